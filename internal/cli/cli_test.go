package cli

import (
	"io"
	"testing"

	"github.com/bomgraph/bomgraph/pkg/emit"
	"github.com/bomgraph/bomgraph/pkg/resolve"
)

func TestPolicyFlags(t *testing.T) {
	// Unset flags produce an empty overlay so the policy file (or the
	// defaults) stays in charge of everything the user did not say.
	var f policyFlags
	if p := f.policy(); p != (resolve.Policy{}) {
		t.Errorf("default overlay = %+v, want zero", p)
	}

	f = policyFlags{strict: true, trace: true, view: "Design", container: "Release"}
	p := f.policy()
	if p.Mode != resolve.ModeStrict {
		t.Errorf("Mode = %q, want %q", p.Mode, resolve.ModeStrict)
	}
	if !p.Trace || p.PreferredView != "Design" || p.PreferredContainer != "Release" {
		t.Errorf("policy = %+v, want trace and preferences applied", p)
	}
}

func TestPipelineOptions(t *testing.T) {
	f := policyFlags{policyFile: "policy.toml"}
	opts := f.pipelineOptions([]string{"parts.csv"}, "bom.csv", true)
	if opts.EdgeFile != "bom.csv" || opts.PolicyFile != "policy.toml" || !opts.Refresh {
		t.Errorf("pipelineOptions() = %+v", opts)
	}
}

func TestBuildEmitters(t *testing.T) {
	// Nothing configured falls back to JSON on stdout.
	emitters := buildEmitters(importOpts{})
	if len(emitters) != 1 {
		t.Fatalf("len(emitters) = %d, want 1", len(emitters))
	}
	je, ok := emitters[0].(*emit.JSONEmitter)
	if !ok || je.Out == nil {
		t.Errorf("fallback emitter = %T, want JSONEmitter on stdout", emitters[0])
	}

	emitters = buildEmitters(importOpts{
		output:   "out.json",
		neo4jURI: "bolt://localhost:7687",
		mongoURI: "mongodb://localhost:27017",
	})
	if len(emitters) != 3 {
		t.Fatalf("len(emitters) = %d, want 3", len(emitters))
	}
	if _, ok := emitters[0].(*emit.Neo4jEmitter); !ok {
		t.Errorf("emitters[0] = %T, want *emit.Neo4jEmitter", emitters[0])
	}
	if _, ok := emitters[1].(*emit.MongoEmitter); !ok {
		t.Errorf("emitters[1] = %T, want *emit.MongoEmitter", emitters[1])
	}
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := map[string]bool{
		"import": false, "xref": false, "check": false,
		"visualize": false, "serve": false, "cache": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}
