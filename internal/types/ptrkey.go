package types

import "fmt"

// ptrKeyOf formats the identity of an opaque (pointer-typed) value. Kept in
// its own tiny file so the unsafe-adjacent %p formatting trick is isolated
// and easy to audit.
func ptrKeyOf(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%p", v)
}
