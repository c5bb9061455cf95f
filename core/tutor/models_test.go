package tutor

import "testing"

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		role   string
		want   string
		wantOk bool
	}{
		{role: "Padre", want: RoleParent, wantOk: true},
		{role: " madre ", want: RoleParent, wantOk: true},
		{role: "Padre/Madre", want: RoleParent, wantOk: true},
		{role: "TUTOR", want: RoleTutor, wantOk: true},
		{role: "maestra", want: RoleTeacher, wantOk: true},
		{role: "teacher", want: RoleTeacher, wantOk: true},
		{role: "abuelo"},
		{role: ""},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			got, ok := NormalizeRole(tt.role)
			if got != tt.want || ok != tt.wantOk {
				t.Errorf("NormalizeRole(%q) = %q, %v; want %q, %v", tt.role, got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

func TestTutor_Password(t *testing.T) {
	var tt Tutor
	if err := tt.SetPassword("abc123"); err != nil {
		t.Fatalf("SetPassword() error = %v", err)
	}
	if string(tt.PasswordHash) == "abc123" {
		t.Error("SetPassword() stored the password in clear")
	}
	if err := tt.CheckPassword("abc123"); err != nil {
		t.Errorf("CheckPassword() error = %v", err)
	}
	if err := tt.CheckPassword("abc124"); err == nil {
		t.Error("CheckPassword() accepted a wrong password")
	}
}
