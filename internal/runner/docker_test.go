package runner

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestBuildRunArgs(t *testing.T) {
	spec := Spec{
		Image:     "adfbdd/tsconj:latest",
		InputPath: "/corpus/instances/net_042.bnet",
		RunDir:    "/results/batch/0042_net_042",
		ExtraArgs: []string{"--count-only", "min", "1000"},
		Timeout:   5 * time.Second,
		Name:      "benchdock-test-0042",
	}

	got := buildRunArgs(spec)
	want := []string{
		"run", "--rm",
		"--name", "benchdock-test-0042",
		"-v", "/corpus/instances/net_042.bnet:/data/net_042.bnet:ro",
		"-v", "/results/batch/0042_net_042:/out",
		"adfbdd/tsconj:latest",
		"--count-only", "min", "1000",
		"/data/net_042.bnet",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("buildRunArgs() =\n  %v\nwant\n  %v", got, want)
	}
}

func TestBuildRunArgs_InputPathLast(t *testing.T) {
	spec := Spec{
		Image:     "img",
		InputPath: "/in/a.txt",
		RunDir:    "/out/run",
	}
	args := buildRunArgs(spec)
	if args[len(args)-1] != "/data/a.txt" {
		t.Errorf("last arg = %q, want /data/a.txt", args[len(args)-1])
	}
}

func TestContainerName_Unique(t *testing.T) {
	a := ContainerName("0b9f2c11-4a77-4a1c-9c4e-000000000000", 7)
	b := ContainerName("0b9f2c11-4a77-4a1c-9c4e-000000000000", 7)

	if a == b {
		t.Errorf("two names for the same run collide: %q", a)
	}
	if !strings.HasPrefix(a, "benchdock-0b9f2c11-0007-") {
		t.Errorf("name = %q, want benchdock-0b9f2c11-0007- prefix", a)
	}
}

func TestNewDockerRunner_DefaultBinary(t *testing.T) {
	d := NewDockerRunner("", false)
	if d.Binary != "docker" {
		t.Errorf("Binary = %q, want docker", d.Binary)
	}
}
