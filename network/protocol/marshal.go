/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package protocol

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalJSON encodes the protocol as its quoted lowercase name.
func (n NetworkProtocol) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

// UnmarshalJSON decodes a quoted protocol name, case-insensitively.
func (n *NetworkProtocol) UnmarshalJSON(b []byte) error {
	*n = ParseBytes(b)
	return nil
}

// MarshalYAML encodes the protocol as its lowercase name.
func (n NetworkProtocol) MarshalYAML() (interface{}, error) {
	return n.String(), nil
}

// UnmarshalYAML decodes a YAML scalar node holding the protocol name.
func (n *NetworkProtocol) UnmarshalYAML(value *yaml.Node) error {
	*n = Parse(value.Value)
	return nil
}

// MarshalTOML encodes the protocol as its bare lowercase name.
func (n NetworkProtocol) MarshalTOML() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalTOML decodes a TOML value (string or []byte) into the protocol.
func (n *NetworkProtocol) UnmarshalTOML(i interface{}) error {
	switch v := i.(type) {
	case []byte:
		*n = ParseBytes(v)
		return nil
	case string:
		*n = Parse(v)
		return nil
	default:
		return fmt.Errorf("protocol: value not in valid format")
	}
}

// MarshalText encodes the protocol as its bare lowercase name.
func (n NetworkProtocol) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText decodes a bare protocol name, case-insensitively.
func (n *NetworkProtocol) UnmarshalText(b []byte) error {
	*n = ParseBytes(b)
	return nil
}

// MarshalCBOR encodes the protocol as its bare lowercase name.
func (n NetworkProtocol) MarshalCBOR() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalCBOR decodes a bare protocol name, case-insensitively.
func (n *NetworkProtocol) UnmarshalCBOR(b []byte) error {
	*n = ParseBytes(b)
	return nil
}
