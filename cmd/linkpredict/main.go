// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command linkpredict scores missing hyperlinks in a web graph.
//
// Usage:
//
//	linkpredict show --edges web.yaml
//	linkpredict score umd.edu cs.umd.edu --edges web.yaml
//	linkpredict rank --all-sets --edges web.yaml
//	linkpredict import web.yaml --name maryland
//	linkpredict serve --snapshot maryland
package main

import (
	"fmt"
	"os"
)

func main() {
	a := &app{}
	root := a.rootCmd()
	err := root.Execute()
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
