/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Returned whenever a payload cannot be decoded into one of the known
// message variants. Callers are expected to log and drop, never to crash
// the connection loop.
var ErrMalformedMessage = errors.New("malformed message")

// Decode parses a wire payload into the variant named by its "subclass"
// discriminant. A payload with a missing or unknown discriminant is malformed,
// the variant is never inferred from the content.
func Decode(raw []byte) (Message, error) {

	var probe struct {
		Subclass *string `json:"subclass"`
	}

	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if probe.Subclass == nil {
		return nil, fmt.Errorf("%w: missing subclass discriminant", ErrMalformedMessage)
	}

	switch *probe.Subclass {
	case SubclassText:
		var m TextMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return &m, nil
	case SubclassImage:
		var m PictureMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return &m, nil
	case SubclassLink:
		var m LinkMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return &m, nil
	default:
		return nil, fmt.Errorf("%w: unknown subclass{%s}", ErrMalformedMessage, *probe.Subclass)
	}
}

// Encode serializes a message back into its wire form.
func Encode(m Message) (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
