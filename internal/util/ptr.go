package util

func StringPtr(v string) *string { return &v }

func IntPtr(v int) *int { return &v }

func BoolPtr(v bool) *bool { return &v }

// Deref returns the pointed-to string or "" for nil.
func Deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
