// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

//go:generate go run ../cmd/musgen

import (
	"fmt"
	"math"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// CachedVector is an embedding stored together with the model that produced it.
type CachedVector struct {
	Model  string
	Values []float32
}

// MarshalCachedVector serializes a CachedVector to bytes.
func MarshalCachedVector(v *CachedVector) []byte {
	buf := make([]byte, CachedVectorMUS.Size(*v))
	CachedVectorMUS.Marshal(*v, buf)
	return buf
}

// UnmarshalCachedVector deserializes a CachedVector from bytes.
func UnmarshalCachedVector(data []byte) (*CachedVector, error) {
	if err := checkVectorLength(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	v, _, err := CachedVectorMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &v, nil
}

// checkVectorLength rejects encodings whose declared value count exceeds the
// remaining bytes. Every encoded float32 takes at least one byte.
func checkVectorLength(data []byte) error {
	n, err := ord.String.Skip(data)
	if err != nil {
		return err
	}
	length, n1, err := varint.PositiveInt.Unmarshal(data[n:])
	if err != nil {
		return err
	}
	if length > len(data)-n-n1 {
		return fmt.Errorf("%w: %d values in %d bytes", ErrTruncatedData, length, len(data)-n-n1)
	}
	return nil
}

// ValidateVector rejects vectors that cannot take part in cosine similarity.
func ValidateVector(v []float32) error {
	if len(v) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidVector)
	}
	for i, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Errorf("%w: component %d is %v", ErrInvalidVector, i, f)
		}
	}
	return nil
}
