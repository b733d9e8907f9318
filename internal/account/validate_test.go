package account

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fashionpolice/fashion-police/internal/apperror"
)

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		confirm  string
		want     PasswordCheck
	}{
		{
			name:     "all rules",
			password: "Abc123!",
			confirm:  "Abc123!",
			want:     PasswordCheck{Length: true, CaseMix: true, Digit: true, Symbol: true, Match: true},
		},
		{
			name:     "no upper case",
			password: "abc123",
			confirm:  "abc123",
			want:     PasswordCheck{Length: true, CaseMix: false, Digit: true, Symbol: false, Match: true},
		},
		{
			name:     "mismatched confirmation",
			password: "Abc123!",
			confirm:  "Abc123?",
			want:     PasswordCheck{Length: true, CaseMix: true, Digit: true, Symbol: true, Match: false},
		},
		{
			name:     "too short",
			password: "Ab1!",
			confirm:  "Ab1!",
			want:     PasswordCheck{Length: false, CaseMix: true, Digit: true, Symbol: true, Match: true},
		},
		{
			name:     "symbol outside the set",
			password: "Abc123€",
			confirm:  "Abc123€",
			want:     PasswordCheck{Length: true, CaseMix: true, Digit: true, Symbol: false, Match: true},
		},
		{
			name:     "backslash and tilde count",
			password: `Abc12\~`,
			confirm:  `Abc12\~`,
			want:     PasswordCheck{Length: true, CaseMix: true, Digit: true, Symbol: true, Match: true},
		},
		{
			name: "empty",
			want: PasswordCheck{Match: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckPassword(tt.password, tt.confirm)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Length && tt.want.CaseMix && tt.want.Digit && tt.want.Symbol && tt.want.Match, got.OK())
		})
	}
}

func TestValidateAge(t *testing.T) {
	for _, in := range []string{"18", "100", " 42 "} {
		_, err := ValidateAge(in)
		assert.NoError(t, err, in)
	}
	for _, in := range []string{"17", "101", "", "abc", "18.5"} {
		_, err := ValidateAge(in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, apperror.ErrValidation))
		assert.Equal(t, "Enter a number between 18 and 100", err.Error())
		assert.Equal(t, "age", apperror.FieldOf(err))
	}
}

func TestValidateHeight(t *testing.T) {
	for _, in := range []string{"36", "96"} {
		n, err := ValidateHeight(in)
		assert.NoError(t, err)
		assert.NotZero(t, n)
	}
	for _, in := range []string{"35", "97", "six feet"} {
		_, err := ValidateHeight(in)
		require.Error(t, err, in)
		assert.Equal(t, "Enter a number between 36 and 96", err.Error())
	}
}

func TestSignUpForm_Validate(t *testing.T) {
	valid := SignUpForm{
		Username: " alice ",
		Email:    "alice@example.com",
		Password: "Abc123!",
		Confirm:  "Abc123!",
		Gender:   "Female",
		Age:      "30",
		Height:   "66",
	}

	reg, err := valid.Validate()
	require.NoError(t, err)
	assert.Equal(t, Registration{
		Username: "alice", Email: "alice@example.com", Password: "Abc123!",
		Gender: "Female", Age: 30, Height: 66,
	}, reg)

	bad := valid
	bad.Username = ""
	bad.Email = "alice"
	bad.Confirm = "nope"
	bad.Gender = "Robot"
	bad.Age = "17"
	bad.Height = "120"
	_, err = bad.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
	assert.Equal(t, map[string]string{
		"username": "Enter a username",
		"email":    "Enter a valid email address",
		"password": "Password not valid",
		"gender":   "Select Male, Female or Other",
		"age":      "Enter a number between 18 and 100",
		"height":   "Enter a number between 36 and 96",
	}, apperror.Fields(err))
}
