// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

// Command coursepathctl drives a running Coursepath server from the shell.
//
//	coursepathctl topics
//	coursepathctl recommend "Machine Learning" --max-steps 4
//	coursepathctl next course-123 --top-k 3
//	coursepathctl mine --min-support 0.05
//	coursepathctl token --secret "$JWT_SECRET" > admin.jwt
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
