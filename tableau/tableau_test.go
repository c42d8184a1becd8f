package tableau

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"
	. "github.com/smartystreets/goconvey/convey"
)

func mustIdentity(n int) *Tableau {
	t, err := Identity(n)
	if err != nil {
		panic(err)
	}
	return t
}

func mustPreset(c Code) *Tableau {
	t, err := Preset(c)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIdentity(t *testing.T) {
	Convey("Given an identity tableau on 3 qubits", t, func() {
		tb := mustIdentity(3)

		Convey("Destabilizers are X_i and stabilizers are Z_i", func() {
			So(tb.Destabilizers(), ShouldResemble, []string{"+XII", "+IXI", "+IIX"})
			So(tb.Stabilizers(), ShouldResemble, []string{"+ZII", "+IZI", "+IIZ"})
			So(tb.Validate(), ShouldBeNil)
			So(tb.MeasureSyndrome(), ShouldResemble, []uint8{0, 0, 0})
		})

		Convey("Zero qubits is an invalid configuration", func() {
			_, err := Identity(0)
			So(errors.Is(err, ErrInvalidCodeConfiguration), ShouldBeTrue)
		})
	})
}

func TestClifford(t *testing.T) {
	Convey("Given an identity tableau on 2 qubits", t, func() {
		tb := mustIdentity(2)

		Convey("H then CNOT prepares the Bell stabilizers", func() {
			So(tb.ApplyClifford("hadamard", 0), ShouldBeNil)
			So(tb.ApplyClifford("cnot", 0, 1), ShouldBeNil)
			So(tb.Stabilizers(), ShouldResemble, []string{"+XX", "+ZZ"})
			So(tb.Validate(), ShouldBeNil)
		})

		Convey("H twice restores the tableau", func() {
			before := tb.Snapshot()
			So(tb.ApplyClifford("h", 1), ShouldBeNil)
			So(tb.ApplyClifford("h", 1), ShouldBeNil)
			So(tb.Snapshot(), ShouldResemble, before)
		})

		Convey("CNOT twice restores the tableau", func() {
			So(tb.ApplyClifford("hadamard", 0), ShouldBeNil)
			before := tb.Snapshot()
			So(tb.ApplyClifford("cnot", 0, 1), ShouldBeNil)
			So(tb.ApplyClifford("cnot", 0, 1), ShouldBeNil)
			So(tb.Snapshot(), ShouldResemble, before)
		})

		Convey("Hadamard on Y picks up a sign", func() {
			So(tb.ApplyClifford("phase", 0), ShouldBeNil)
			So(tb.Destabilizers()[0], ShouldEqual, "+YI")
			So(tb.ApplyClifford("hadamard", 0), ShouldBeNil)
			So(tb.Destabilizers()[0], ShouldEqual, "-YI")
			So(tb.Validate(), ShouldBeNil)
		})

		Convey("Pauli gates only flip signs", func() {
			So(tb.ApplyClifford("pauli_x", 1), ShouldBeNil)
			So(tb.Stabilizers(), ShouldResemble, []string{"+ZI", "-IZ"})
			So(tb.ApplyClifford("pauli_z", 1), ShouldBeNil)
			So(tb.Stabilizers(), ShouldResemble, []string{"+ZI", "-IZ"})
			So(tb.ApplyClifford("pauli_y", 1), ShouldBeNil)
			So(tb.Stabilizers(), ShouldResemble, []string{"+ZI", "+IZ"})
		})

		Convey("SWAP exchanges columns", func() {
			So(tb.ApplyClifford("hadamard", 0), ShouldBeNil)
			So(tb.ApplyClifford("swap", 0, 1), ShouldBeNil)
			So(tb.Stabilizers(), ShouldResemble, []string{"+IX", "+ZI"})
		})

		Convey("CPHASE maps XI to XZ", func() {
			So(tb.ApplyClifford("hadamard", 0), ShouldBeNil)
			So(tb.ApplyClifford("cphase", 0, 1), ShouldBeNil)
			So(tb.Stabilizers()[0], ShouldEqual, "+XZ")
		})

		Convey("Unknown, non-Clifford and malformed operations leave it untouched", func() {
			before := tb.Snapshot()

			err := tb.ApplyClifford("toffoli", 0)
			So(errors.Is(err, ErrUnsupportedOperation), ShouldBeTrue)

			err = tb.ApplyClifford("t", 0)
			So(errors.Is(err, ErrUnsupportedOperation), ShouldBeTrue)

			err = tb.ApplyClifford("cnot", 1, 1)
			So(errors.Is(err, ErrUnsupportedOperation), ShouldBeTrue)

			err = tb.ApplyClifford("hadamard", 5)
			So(errors.Is(err, ErrQubitOutOfRange), ShouldBeTrue)

			So(tb.Snapshot(), ShouldResemble, before)
		})
	})
}

func TestRandomCliffordsKeepValidity(t *testing.T) {
	Convey("Given a long random Clifford sequence on a Steane tableau", t, func() {
		tb := mustPreset(Steane)
		r := rand.New(rand.NewSource(42))
		ops := []string{"hadamard", "phase", "pauli_x", "pauli_y", "pauli_z", "cnot", "swap", "cphase"}

		for i := 0; i < 300; i++ {
			op := ops[r.Intn(len(ops))]
			a := r.Intn(7)
			b := (a + 1 + r.Intn(6)) % 7

			var err error
			if op == "cnot" || op == "swap" || op == "cphase" {
				err = tb.ApplyClifford(op, a, b)
			} else {
				err = tb.ApplyClifford(op, a)
			}
			So(err, ShouldBeNil)
		}

		Convey("The symplectic structure survives", func() {
			err := tb.Validate()
			if err != nil {
				t.Log(spew.Sdump(tb.Snapshot()))
			}
			So(err, ShouldBeNil)
		})
	})
}

func TestPresets(t *testing.T) {
	Convey("Given every preset code", t, func() {
		for _, c := range Codes() {
			tb := mustPreset(c)
			n, _, ok := Describe(c)

			So(ok, ShouldBeTrue)
			So(tb.Qubits(), ShouldEqual, n)
			So(tb.Code(), ShouldEqual, c)
			So(tb.Validate(), ShouldBeNil)
			So(isZero(tb.MeasureSyndrome()), ShouldBeTrue)
		}

		Convey("The stabilizers start with the textbook checks", func() {
			So(mustPreset(BitFlip).Stabilizers(), ShouldResemble, []string{"+ZZI", "+IZZ", "+ZZZ"})
			So(mustPreset(PhaseFlip).Stabilizers(), ShouldResemble, []string{"+XXI", "+IXX", "+XXX"})
			So(mustPreset(Steane).Stabilizers()[:6], ShouldResemble, []string{
				"+IIIXXXX", "+IXXIIXX", "+XIXIXIX", "+IIIZZZZ", "+IZZIIZZ", "+ZIZIZIZ",
			})
			So(mustPreset(Steane).Checks(), ShouldEqual, 6)
		})

		Convey("Short names resolve", func() {
			c, err := ParseCode("bit_flip")
			So(err, ShouldBeNil)
			So(c, ShouldEqual, BitFlip)

			_, err = ParseCode("surface")
			So(errors.Is(err, ErrInvalidCodeConfiguration), ShouldBeTrue)
		})
	})
}

func TestBitFlipCorrection(t *testing.T) {
	Convey("Given the 3-qubit bit-flip code", t, func() {
		tb := mustPreset(BitFlip)

		Convey("The decode table is the textbook one", func() {
			So(tb.Decoder().Table(), ShouldResemble, map[string]Recovery{
				"10": {Pauli: X, Qubit: 0},
				"11": {Pauli: X, Qubit: 1},
				"01": {Pauli: X, Qubit: 2},
			})
		})

		Convey("An X error on each qubit is located and undone", func() {
			want := map[int][]uint8{0: {1, 0}, 1: {1, 1}, 2: {0, 1}}

			for q := 0; q < 3; q++ {
				c := tb.Clone()
				So(c.ApplyError(X, q), ShouldBeNil)
				So(c.MeasureSyndrome()[:2], ShouldResemble, want[q])

				rec, err := c.DecodeSyndrome()
				So(err, ShouldBeNil)
				So(*rec, ShouldResemble, Recovery{Pauli: X, Qubit: q})

				So(c.Recover(rec), ShouldBeNil)
				So(isZero(c.MeasureSyndrome()), ShouldBeTrue)
			}
		})

		Convey("A Z error is invisible to the checks", func() {
			So(tb.ApplyError(Z, 1), ShouldBeNil)
			rec, err := tb.DecodeSyndrome()
			So(err, ShouldBeNil)
			So(rec, ShouldBeNil)
		})

		Convey("An identity error changes nothing", func() {
			So(tb.ApplyError(I, 2), ShouldBeNil)
			So(isZero(tb.MeasureSyndrome()), ShouldBeTrue)
		})
	})
}

func TestPhaseFlipCorrection(t *testing.T) {
	Convey("Given the 3-qubit phase-flip code", t, func() {
		tb := mustPreset(PhaseFlip)

		Convey("A Z error on the middle qubit decodes to Z on that qubit", func() {
			So(tb.ApplyError(Z, 1), ShouldBeNil)
			rec, err := tb.DecodeSyndrome()
			So(err, ShouldBeNil)
			So(*rec, ShouldResemble, Recovery{Pauli: Z, Qubit: 1})
			So(tb.Recover(rec), ShouldBeNil)
			So(isZero(tb.MeasureSyndrome()), ShouldBeTrue)
		})
	})
}

func TestSteaneCorrection(t *testing.T) {
	Convey("Given the Steane code", t, func() {
		tb := mustPreset(Steane)

		Convey("With no error there is nothing to correct", func() {
			rec, err := tb.DecodeSyndrome()
			So(err, ShouldBeNil)
			So(rec, ShouldBeNil)
		})

		Convey("Every single-qubit error is identified exactly", func() {
			for q := 0; q < 7; q++ {
				for _, p := range []Pauli{X, Y, Z} {
					c := tb.Clone()
					So(c.ApplyError(p, q), ShouldBeNil)

					rec, err := c.DecodeSyndrome()
					So(err, ShouldBeNil)
					So(*rec, ShouldResemble, Recovery{Pauli: p, Qubit: q})

					So(c.Recover(rec), ShouldBeNil)
					So(isZero(c.MeasureSyndrome()), ShouldBeTrue)
				}
			}
		})

		Convey("An X error on qubit 5 lights up binary 6 on the Z checks", func() {
			So(tb.ApplyError(X, 5), ShouldBeNil)
			So(tb.MeasureSyndrome()[3:6], ShouldResemble, []uint8{1, 1, 0})
		})
	})
}

func TestUncorrectable(t *testing.T) {
	Convey("Given an identity tableau with every stabilizer as a check", t, func() {
		tb := mustIdentity(2)

		Convey("A pattern outside the table is reported", func() {
			d := tb.Decoder()
			So(len(d.Table()), ShouldEqual, 2)

			_, err := d.Decode([]uint8{1, 1})
			So(errors.Is(err, ErrUncorrectable), ShouldBeTrue)
		})
	})
}

func TestFromGenerators(t *testing.T) {
	Convey("Given caller-supplied generators", t, func() {
		Convey("A partial commuting set is completed to a valid tableau", func() {
			tb, err := FromGenerators(4, []Generator{MustGenerator("XXXX"), MustGenerator("-ZZZZ")})
			So(err, ShouldBeNil)
			So(tb.Validate(), ShouldBeNil)
			So(tb.Stabilizers()[:2], ShouldResemble, []string{"+XXXX", "-ZZZZ"})
			So(tb.MeasureSyndrome()[1], ShouldEqual, 1)
		})

		Convey("Anticommuting generators are rejected", func() {
			_, err := FromGenerators(2, []Generator{MustGenerator("XI"), MustGenerator("ZI")})
			So(errors.Is(err, ErrInvalidCodeConfiguration), ShouldBeTrue)
		})

		Convey("Dependent generators are rejected", func() {
			_, err := FromGenerators(2, []Generator{
				MustGenerator("ZI"), MustGenerator("IZ"), MustGenerator("ZZ"),
			})
			So(errors.Is(err, ErrInvalidCodeConfiguration), ShouldBeTrue)

			_, err = FromGenerators(2, []Generator{MustGenerator("ZZ"), MustGenerator("ZZ")})
			So(errors.Is(err, ErrInvalidCodeConfiguration), ShouldBeTrue)
		})

		Convey("Width must match the qubit count", func() {
			_, err := FromGenerators(3, []Generator{MustGenerator("ZZ")})
			So(errors.Is(err, ErrInvalidCodeConfiguration), ShouldBeTrue)
		})

		Convey("Imaginary signs and stray letters are refused", func() {
			_, err := ParseGenerator("+i", "XX")
			So(errors.Is(err, ErrInvalidCodeConfiguration), ShouldBeTrue)

			_, err = ParseGenerator("-1", "XQ")
			So(errors.Is(err, ErrInvalidCodeConfiguration), ShouldBeTrue)

			g, err := ParseGenerator("-1", "xyz")
			So(err, ShouldBeNil)
			So(g.String(), ShouldEqual, "-XYZ")
		})

		Convey("No generators falls back to the identity tableau", func() {
			tb, err := FromGenerators(2, nil)
			So(err, ShouldBeNil)
			So(tb.Stabilizers(), ShouldResemble, []string{"+ZI", "+IZ"})
		})
	})
}
