// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"encoding/json"
	"strconv"

	"github.com/MKhiriev/go-task-keeper/internal/tree"
	"github.com/MKhiriev/go-task-keeper/models"
	"github.com/cespare/xxhash/v2"
)

// ForestHash fingerprints a forest through its flattened form, which makes a
// leaf with a nil children list and one with an empty list hash the same.
// Flattened nodes hold only strings, numbers and flags, so encoding never
// fails.
func ForestHash(forest models.Forest) string {
	data, _ := json.Marshal(tree.Flatten(forest))
	return fingerprint(data)
}

// TextHash fingerprints a plain text value such as the memo.
func TextHash(text string) string {
	return fingerprint([]byte(text))
}

// fingerprint is a cheap equality test over encoded content, not an
// integrity check: use Hash for anything that must resist tampering.
func fingerprint(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
