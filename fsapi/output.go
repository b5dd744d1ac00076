package fsapi

import "github.com/ipld/go-ipld-prime/schema"

func init() {
	TypeSystem.Accumulate(schema.SpawnUnion("ApiOutput",
		[]schema.TypeName{
			"OutputString",
			"LogOutput",
			"SetupRecord",
		},
		schema.SpawnUnionRepresentationKeyed(map[string]schema.TypeName{
			"output": "OutputString",
			"log":    "LogOutput",
			"setup":  "SetupRecord",
		})))
	TypeSystem.Accumulate(schema.SpawnString("OutputString"))
	TypeSystem.Accumulate(schema.SpawnString("LogString"))

	TypeSystem.Accumulate(schema.SpawnStruct("LogOutput", []schema.StructField{
		schema.SpawnStructField("level", "String", false, false),
		schema.SpawnStructField("msg", "LogString", false, false),
	}, schema.SpawnStructRepresentationMap(nil)))

	TypeSystem.Accumulate(schema.SpawnStruct("SetupRecord",
		[]schema.StructField{
			schema.SpawnStructField("guid", "String", false, false),
			schema.SpawnStructField("time", "Int", false, false),
			schema.SpawnStructField("workspaceRoot", "String", false, false),
			schema.SpawnStructField("force", "Bool", false, false),
			schema.SpawnStructField("omnicache", "String", true, false),
			schema.SpawnStructField("outcome", "String", false, false),
			schema.SpawnStructField("code", "Int", false, false),
			schema.SpawnStructField("reason", "String", true, false),
			schema.SpawnStructField("submodules", "List__SubmoduleRecord", false, false),
			schema.SpawnStructField("versions", "List__VersionEntry", false, false),
		},
		schema.SpawnStructRepresentationMap(nil)))
	TypeSystem.Accumulate(schema.SpawnList("List__SubmoduleRecord",
		"SubmoduleRecord", false))
	TypeSystem.Accumulate(schema.SpawnStruct("SubmoduleRecord",
		[]schema.StructField{
			schema.SpawnStructField("path", "String", false, false),
			schema.SpawnStructField("status", "String", false, false),
			schema.SpawnStructField("reason", "String", true, false),
		},
		schema.SpawnStructRepresentationMap(nil)))
	TypeSystem.Accumulate(schema.SpawnList("List__VersionEntry",
		"VersionEntry", false))
	TypeSystem.Accumulate(schema.SpawnStruct("VersionEntry",
		[]schema.StructField{
			schema.SpawnStructField("name", "String", false, false),
			schema.SpawnStructField("version", "String", false, false),
			schema.SpawnStructField("category", "String", false, false),
		},
		schema.SpawnStructRepresentationMap(nil)))
}

type OutputString string
type LogString string

type LogOutput struct {
	Level string
	Msg   LogString
}

// ApiOutput is a union (aka sum type).  Exactly one of its fields will be set.
type ApiOutput struct {
	Output      *OutputString
	Log         *LogOutput
	SetupRecord *SetupRecord
}

// SetupRecord summarizes one setup run.
type SetupRecord struct {
	Guid          string
	Time          int64
	WorkspaceRoot string
	Force         bool
	Omnicache     *string
	Outcome       string
	Code          int64
	Reason        *string
	Submodules    []SubmoduleRecord
	Versions      []VersionEntry
}

// SubmoduleRecord is the per-submodule part of a SetupRecord.
// Status is one of "fetched", "skipped", or "failed".
type SubmoduleRecord struct {
	Path   string
	Status string
	Reason *string
}

// VersionEntry is one reported tool or dependency version.
type VersionEntry struct {
	Name     string
	Version  string
	Category string
}
