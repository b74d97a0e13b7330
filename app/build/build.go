// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package build contains build information for the application.
package build

import "fmt"

// These values are replaced at compile time using the -X build flag:
//
//	-X github.com/nauhpc/doppler/app/build.Rev=${REVISION}
//	-X github.com/nauhpc/doppler/app/build.Tag=${TAG}
//	-X github.com/nauhpc/doppler/app/build.Time=${BUILD_TIME}
var (
	Rev  = "latest"
	Tag  = "latest"
	Time = "latest"
)

// Version returns the tag and revision in one display string.
func Version() string {
	return fmt.Sprintf("%s (%s)", Tag, Rev)
}
