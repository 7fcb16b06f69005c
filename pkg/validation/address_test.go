package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr string
	}{
		{name: "valid 44 char address", addr: "JEKNVnkbo3jma5nREBBJCDoXFVeKkD56V3xKrvRmWxFG"},
		{name: "valid 43 char address", addr: "4wBqpZM9xaSheZzJSMawUKKwhdpChKbZ5eu5ky4Vigw"},
		{name: "valid system program address", addr: "11111111111111111111111111111111"},
		{name: "empty", addr: "", wantErr: "empty"},
		{name: "too short", addr: "abc", wantErr: "length"},
		{name: "too long", addr: strings.Repeat("J", 45), wantErr: "length"},
		{name: "forbidden character zero", addr: "0EKNVnkbo3jma5nREBBJCDoXFVeKkD56V3xKrvRmWxFG", wantErr: "base58 alphabet"},
		{name: "forbidden character l", addr: "lEKNVnkbo3jma5nREBBJCDoXFVeKkD56V3xKrvRmWxFG", wantErr: "base58 alphabet"},
		{name: "right alphabet wrong byte length", addr: strings.Repeat("1", 44), wantErr: "invalid base58 address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.addr)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSignature(t *testing.T) {
	assert.NoError(t, ValidateSignature("1GMkH3brNXiNNs1tiFZHu4yZSRrzJwxi5wB9bHFtMinfCXNnR1adh8Vo8NTheK4evneedH4qmvjeqcBBNAefgS"))
	assert.Error(t, ValidateSignature(""))
	assert.Error(t, ValidateSignature("not-a-signature"))
}
