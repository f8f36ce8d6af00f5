package main

import (
	"encoding/json"
	"errors"
	"testing"

	"fieldinspect/internal/api"
	"fieldinspect/internal/services"
	"fieldinspect/internal/testsupport"
)

func TestLocalInspectionWorkflow(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedMaize(t)

	out, _, err := env.run(t, "init", "100")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	requireContains(t, out, "created with 3 stages")

	out, _, err = env.run(t, "init", "100")
	if err != nil {
		t.Fatalf("init again: %v", err)
	}
	requireContains(t, out, "already initialized")

	out, _, err = env.run(t, "show", "100")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "Next actionable order: 1")
	requireContains(t, out, "Pre-harvest")
	requireContains(t, out, "2024-04-09")

	out, _, err = env.run(t, "--as", testsupport.SubjectInspector, "submit", "100",
		"--type", "1", "--decision", "provisional", "--comment", "germination patchy", "--input", "stand=70%")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	requireContains(t, out, "Pre-planting recorded as provisional")
	requireContains(t, out, "recommendation: None")

	out, _, err = env.run(t, "show", "100", "--json")
	if err != nil {
		t.Fatalf("show --json: %v", err)
	}
	var view api.InspectionView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode show output: %v", err)
	}
	first := view.Stages[0]
	if first.Status != "provisional" || first.Inputs["stand"] != "70%" || first.Comment == nil || *first.Comment != "germination patchy" {
		t.Fatalf("unexpected first stage: %+v", first)
	}

	out, _, err = env.run(t, "recommendation", "100")
	if err != nil {
		t.Fatalf("recommendation: %v", err)
	}
	requireContains(t, out, "recommendation: None")
	requireContains(t, out, "decided provisional")
}

func TestLocalCommandsEnforceCapabilities(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedMaize(t)

	_, _, err := env.run(t, "--as", testsupport.SubjectViewer, "init", "100")
	if !errors.Is(err, services.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}

	if _, _, err := env.run(t, "init", "100"); err != nil {
		t.Fatalf("init: %v", err)
	}
	_, _, err = env.run(t, "--as", testsupport.SubjectInspector, "submit", "100", "--type", "3", "--decision", "accepted")
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected locked stage conflict, got %v", err)
	}
}

func TestRemoteInspectionWorkflow(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedMaize(t)
	url := env.startDaemon(t)

	remote := func(token string, args ...string) (string, error) {
		out, _, err := env.run(t, append([]string{"--remote", "--daemon", url, "--token", token}, args...)...)
		return out, err
	}

	if _, err := remote(testsupport.TokenViewer, "init", "100"); !errors.Is(err, services.ErrPermissionDenied) {
		t.Fatalf("expected remote permission denied, got %v", err)
	}
	if _, err := remote(testsupport.TokenRegistrar, "init", "100"); err != nil {
		t.Fatalf("remote init: %v", err)
	}
	out, err := remote(testsupport.TokenInspector, "submit", "100", "--type", "1", "--decision", "skipped", "--json")
	if err != nil {
		t.Fatalf("remote submit: %v", err)
	}
	var resp api.SubmitStageResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode submit output: %v", err)
	}
	if resp.Status != "skipped" || resp.Resolution != "type" {
		t.Fatalf("unexpected submit response: %+v", resp)
	}

	out, err = remote(testsupport.TokenViewer, "show", "100")
	if err != nil {
		t.Fatalf("remote show: %v", err)
	}
	requireContains(t, out, "Next actionable order: 2")

	if _, err := remote("wrong-token", "show", "100"); err == nil {
		t.Fatal("expected bad token to fail")
	}
}

func TestParseInputs(t *testing.T) {
	inputs, err := parseInputs(`{"plants": 42, "notes": "ok"}`, []string{"notes=override"})
	if err != nil {
		t.Fatalf("parseInputs: %v", err)
	}
	if inputs["plants"] != float64(42) || inputs["notes"] != "override" {
		t.Fatalf("unexpected inputs: %v", inputs)
	}
	if inputs, err := parseInputs("", nil); err != nil || inputs != nil {
		t.Fatalf("expected nil inputs, got %v (%v)", inputs, err)
	}
	if _, err := parseInputs("", []string{"novalue"}); err == nil {
		t.Fatal("expected malformed pair to fail")
	}
	if _, err := parseInputs("[1,2]", nil); err == nil {
		t.Fatal("expected non-object JSON to fail")
	}
}

func TestInvalidReturnID(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := env.run(t, "show", "abc"); err == nil {
		t.Fatal("expected invalid id to fail")
	}
}
