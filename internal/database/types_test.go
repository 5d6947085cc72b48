package database

import "testing"

func TestDisplayLabel(t *testing.T) {
	tests := []struct {
		name    string
		student Student
		want    string
	}{
		{"name and roll number", Student{Name: "Jan Novak", RollNo: "CS101"}, "Jan Novak (CS101)"},
		{"missing roll number", Student{Name: "Jan Novak"}, "Jan Novak"},
		{"empty student", Student{}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.student.DisplayLabel()
			if got != tc.want {
				t.Errorf("DisplayLabel() = %q, want %q", got, tc.want)
			}
		})
	}
}
