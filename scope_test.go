package statequeue

import "testing"

func TestNewScopeCopiesMetadata(t *testing.T) {
	meta := map[string]any{"owner": "system"}
	scope := NewScope("system", ScopePrioritySystem,
		WithScopeLabel("System Defaults"),
		WithScopeMetadata(meta),
	)

	meta["owner"] = "mutated"

	if got := scope.Metadata["owner"]; got != "system" {
		t.Fatalf("expected metadata copy to remain 'system', got %q", got)
	}
	if scope.Label != "System Defaults" {
		t.Fatalf("label not set, got %q", scope.Label)
	}
}

func TestLayerSourceScopeIsCopied(t *testing.T) {
	scope := NewScope("user", ScopePriorityUser, WithScopeMetadata(map[string]any{"id": "u-1"}))
	layer := NewLayerSource(scope, map[string]string{"theme": "dark"})

	got := layer.Scope()
	got.Metadata["id"] = "u-2"
	if layer.Scope().Metadata["id"] != "u-1" {
		t.Fatalf("expected layer scope to be immutable")
	}
}

func TestScopeBinding(t *testing.T) {
	ctx := RuleContext{}.withDefaultScope(NewScope("org", ScopePriorityOrg, WithScopeLabel("Organization")))
	binding := ctx.scopeBinding()
	if binding["name"] != "org" || binding["label"] != "Organization" || binding["priority"] != ScopePriorityOrg {
		t.Fatalf("unexpected binding %+v", binding)
	}
	if ctx.scopeLabel() != "org" {
		t.Fatalf("expected scope label org, got %q", ctx.scopeLabel())
	}

	named := RuleContext{ScopeName: "team"}
	if named.scopeBinding()["name"] != "team" {
		t.Fatalf("expected ScopeName fallback binding")
	}
	if (RuleContext{}).scopeBinding() != nil || (RuleContext{}).scopeLabel() != "unknown" {
		t.Fatalf("expected empty context to have no binding")
	}
}

func TestWithDefaultScopeKeepsExplicitScope(t *testing.T) {
	explicit := RuleContext{Scope: NewScope("tenant", ScopePriorityTenant)}
	got := explicit.withDefaultScope(NewScope("user", ScopePriorityUser))
	if got.Scope.Name != "tenant" || got.ScopeName != "tenant" {
		t.Fatalf("expected explicit scope to win, got %+v", got.Scope)
	}
}
