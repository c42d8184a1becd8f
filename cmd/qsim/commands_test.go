package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/qsim/circuit"
	"github.com/theapemachine/qsim/tableau"
)

func execute(args ...string) (string, error) {
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestParseErrors(t *testing.T) {
	Convey("Given error specs", t, func() {
		errs, err := parseErrors([]string{"X:0", "z: 2"})

		So(err, ShouldBeNil)
		So(errs, ShouldResemble, []circuit.PauliError{
			{Type: tableau.X, Qubit: 0},
			{Type: tableau.Z, Qubit: 2},
		})

		_, err = parseErrors([]string{"X"})
		So(err, ShouldNotBeNil)

		_, err = parseErrors([]string{"Q:1"})
		So(err, ShouldNotBeNil)
	})
}

func TestCommands(t *testing.T) {
	Convey("Given the CLI", t, func() {
		Convey("codes lists the presets", func() {
			out, err := execute("codes")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "steane_code")
		})

		Convey("qec corrects an injected error", func() {
			out, err := execute("qec", "--code", "steane", "--error", "Y:4")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "Y on qubit 4")
		})

		Convey("stabilizer prints the evolved tableau", func() {
			req := filepath.Join(t.TempDir(), "bell.json")
			So(os.WriteFile(req, []byte(`{
				"numQubits": 2,
				"operations": [
					{"operation": "hadamard", "qubits": [0]},
					{"operation": "cnot", "qubits": [0, 1]}
				]
			}`), 0o600), ShouldBeNil)

			out, err := execute("stabilizer", req)
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "+XX")
			So(out, ShouldContainSubstring, "+ZZ")
			So(out, ShouldContainSubstring, "none needed")
		})

		Convey("circuit runs a request file and writes a chart", func() {
			dir := t.TempDir()
			req := filepath.Join(dir, "bell.json")
			chart := filepath.Join(dir, "bell.html")

			So(os.WriteFile(req, []byte(`{
				"qubitNodes": [{"id": "a", "value": "0"}, {"id": "b", "value": "0"}],
				"operations": [
					{"operation": "hadamard", "inputs": ["a"]},
					{"operation": "cnot", "inputs": ["a", "b"]}
				]
			}`), 0o600), ShouldBeNil)

			out, err := execute("circuit", req, "--chart", chart)
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "|11⟩")

			info, err := os.Stat(chart)
			So(err, ShouldBeNil)
			So(info.Size(), ShouldBeGreaterThan, 0)
		})
	})
}
