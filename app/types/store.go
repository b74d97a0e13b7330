// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"context"
)

// RecordStore is the boundary to the raw accounting data source. The engine
// never queries it directly; the snapshot cache pulls the full record set
// through this interface on each refresh.
type RecordStore interface {
	// FetchAllRecords returns every accounting record, ordered by date
	// ascending. It fails with ErrStoreUnavailable when the backing store
	// cannot be reached and ErrMalformedRecord when any row cannot be
	// parsed; no partial result is ever returned.
	FetchAllRecords(ctx context.Context) ([]JobRecord, error)
}
