// Package check contains the validation levels for validemail.
// Each checker type implements the checker interface defined in
// validator.go, and the package-level functions expose the grammar rules
// on their own. The recommended entry point is the Validator in
// github.com/KMK-ONLINE/valid-email.
package check
