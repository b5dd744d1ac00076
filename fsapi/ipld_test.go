package fsapi

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/codec/json"
)

func TestTypeSystemCompiles(t *testing.T) {
	if errs := TypeSystem.ValidateGraph(); errs != nil {
		qt.Assert(t, errs, qt.IsNil)
	}
}

func TestSetupSettingsSerialForm(t *testing.T) {
	serial := `{
	"requiredSubmodules": [
		{"path": "Common/MU"},
		{"path": "Silicon/Arm/TFA", "recursive": false}
	]
}`
	settings := SetupSettings{}
	_, err := ipld.Unmarshal([]byte(serial), json.Decode, &settings, TypeSystem.TypeByName("SetupSettings"))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, settings.WorkspaceRoot, qt.IsNil)
	qt.Assert(t, settings.RequiredSubmodules, qt.HasLen, 2)
	qt.Check(t, settings.RequiredSubmodules[0].Path, qt.Equals, "Common/MU")
	qt.Check(t, settings.RequiredSubmodules[0].IsRecursive(), qt.IsTrue)
	qt.Check(t, settings.RequiredSubmodules[1].Path, qt.Equals, "Silicon/Arm/TFA")
	qt.Check(t, settings.RequiredSubmodules[1].IsRecursive(), qt.IsFalse)
}

func TestSetupRecordRoundTrip(t *testing.T) {
	reason := "Unable to checkout repo"
	record := SetupRecord{
		Guid:          "abcd",
		Time:          1234,
		WorkspaceRoot: "/ws",
		Force:         false,
		Outcome:       "partial",
		Code:          -1,
		Submodules: []SubmoduleRecord{
			{Path: "A", Status: "failed", Reason: &reason},
			{Path: "B", Status: "fetched"},
		},
		Versions: []VersionEntry{
			{Name: "Git", Version: "git version 2.39.2", Category: "TOOL"},
		},
	}
	serial, err := ipld.Marshal(json.Encode, &ApiOutput{SetupRecord: &record}, TypeSystem.TypeByName("ApiOutput"))
	qt.Assert(t, err, qt.IsNil)
	qt.Check(t, strings.Contains(string(serial), `"setup"`), qt.IsTrue)

	var decoded ApiOutput
	_, err = ipld.Unmarshal(serial, json.Decode, &decoded, TypeSystem.TypeByName("ApiOutput"))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, decoded.SetupRecord, qt.Not(qt.IsNil))
	qt.Assert(t, *decoded.SetupRecord, qt.DeepEquals, record)
}

func TestRequiredSubmoduleDefaults(t *testing.T) {
	qt.Check(t, RequiredSubmodule{Path: "x"}.IsRecursive(), qt.IsTrue)
	qt.Check(t, NewRequiredSubmodule("x", false).IsRecursive(), qt.IsFalse)
	qt.Check(t, NewRequiredSubmodule("x", true).IsRecursive(), qt.IsTrue)
}
