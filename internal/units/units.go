// Package units defines the conversion factors between the internal unit
// system (Hartree atomic units) and the units spoken at the calculator
// boundary (angstrom, electronvolt).
//
// All quantities held by a system.System are in atomic units; external
// calculators exchange angstrom and electronvolt, and force thresholds are
// expressed in eV/A.
package units

// CODATA 2018 values.
const (
	// Angstrom is one angstrom expressed in Bohr.
	Angstrom = 1.8897261246257702

	// Electronvolt is one electronvolt expressed in Hartree.
	Electronvolt = 0.03674932217565499

	// AMU is one unified atomic mass unit expressed in electron masses.
	AMU = 1822.888486209

	// ForcePerEVA converts a gradient in Hartree/Bohr to a force magnitude
	// in eV/A (modulo the sign flip between gradient and force).
	ForcePerEVA = Angstrom / Electronvolt
)
