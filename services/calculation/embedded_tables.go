// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
This file bridges the build system and the runtime logic: the cost
tables travel inside the binary so a deployed calculator can never
disagree with the tables it was built against.
*/

package calculation

import (
	_ "embed"
)

// CostTables holds the raw bytes of cost_tables.yaml, baked in at
// compile time.
//
//go:embed cost_tables.yaml
var CostTables []byte
