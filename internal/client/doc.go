// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the client application runtime.
//
// It wires the working copy file, the client sync service, and background
// synchronization into a single process lifecycle.
package client
