package fsapi

import (
	"github.com/ipld/go-ipld-prime/schema"
)

func init() {
	TypeSystem.Accumulate(schema.SpawnStruct("SetupSettings",
		[]schema.StructField{
			schema.SpawnStructField("workspaceRoot", "String", true, false),
			schema.SpawnStructField("requiredSubmodules", "List__RequiredSubmodule", false, false),
		},
		schema.SpawnStructRepresentationMap(nil)))
	TypeSystem.Accumulate(schema.SpawnList("List__RequiredSubmodule",
		"RequiredSubmodule", false))
	TypeSystem.Accumulate(schema.SpawnStruct("RequiredSubmodule",
		[]schema.StructField{
			schema.SpawnStructField("path", "String", false, false),
			schema.SpawnStructField("recursive", "Bool", true, false),
		},
		schema.SpawnStructRepresentationMap(nil)))
}

// SetupSettings is the serial form of a platform settings file.
// The yaml tags are used when the file is YAML; the IPLD schema above governs JSON.
type SetupSettings struct {
	WorkspaceRoot      *string             `yaml:"workspaceRoot,omitempty"`
	RequiredSubmodules []RequiredSubmodule `yaml:"requiredSubmodules"`
}

// RequiredSubmodule describes one submodule that must be present for the platform to build.
// Path is relative to the workspace root.
type RequiredSubmodule struct {
	Path      string `yaml:"path"`
	Recursive *bool  `yaml:"recursive,omitempty"` // absent means true.
}

// NewRequiredSubmodule is a shorthand for building a descriptor in code.
func NewRequiredSubmodule(path string, recursive bool) RequiredSubmodule {
	return RequiredSubmodule{Path: path, Recursive: &recursive}
}

// IsRecursive reports whether the submodule should be updated with --recursive.
func (r RequiredSubmodule) IsRecursive() bool {
	if r.Recursive == nil {
		return true
	}
	return *r.Recursive
}
