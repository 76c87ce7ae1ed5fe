// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package circular provides small helpers for sizing circular buffers and
// hash tables, such as rounding a requested capacity up to a power of two.
package circular
