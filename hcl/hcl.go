// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package hcl maps the optional utredact configuration file onto the
// redaction policy.
package hcl

import (
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// HCL is the top-level configuration document.
type HCL struct {
	Redact *Redact `hcl:"redact,block"`
}

// Redact configures the marker lists and replacement token. All attributes
// are optional; anything left unset falls back to the built-in defaults,
// and command-line flags override the file either way.
type Redact struct {
	FileMarkers []string `hcl:"file_markers,optional"`
	FnMarkers   []string `hcl:"fn_markers,optional"`
	Token       string   `hcl:"token,optional"`
}

// Parse reads and decodes an HCL config file from path.
func Parse(path string) (HCL, error) {
	var h HCL
	err := hclsimple.DecodeFile(path, nil, &h)
	if err != nil {
		return HCL{}, err
	}
	return h, nil
}
