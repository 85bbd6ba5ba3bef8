package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPessoa_JSONShape(t *testing.T) {
	p := Pessoa{
		Nome:     "João Silva",
		Telefone: "11987654321",
		CPF:      "12345678901",
		Endereco: &Endereco{CEP: "01310100", Numero: "123"},
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))

	_, hasID := body["id"]
	assert.False(t, hasID, "id must be omitted for new records")
	assert.Equal(t, "12345678901", body["cpf"])
	endereco := body["endereco"].(map[string]interface{})
	assert.Equal(t, "01310100", endereco["cep"])
	assert.Equal(t, "123", endereco["numero"])
}

func TestPessoa_HasIDAndDisplayName(t *testing.T) {
	id := int64(42)
	p := Pessoa{ID: &id, Nome: "  Maria  "}

	assert.True(t, p.HasID())
	assert.Equal(t, "Maria", p.DisplayName())
	assert.False(t, Pessoa{}.HasID())
}

func TestAddressFragment_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected AddressFragment
	}{
		{
			name:     "ViaCEP naming",
			payload:  `{"bairro":"Centro","localidade":"São Paulo","uf":"SP"}`,
			expected: AddressFragment{Bairro: "Centro", Municipio: "São Paulo", Estado: "SP"},
		},
		{
			name:     "backend naming",
			payload:  `{"bairro":"Bela Vista","municipio":"São Paulo","estado":"SP"}`,
			expected: AddressFragment{Bairro: "Bela Vista", Municipio: "São Paulo", Estado: "SP"},
		},
		{
			name:     "localidade wins over municipio",
			payload:  `{"localidade":"Rio de Janeiro","municipio":"Niterói","uf":"RJ"}`,
			expected: AddressFragment{Municipio: "Rio de Janeiro", Estado: "RJ"},
		},
		{
			name:     "empty object",
			payload:  `{}`,
			expected: AddressFragment{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got AddressFragment
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &got))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAddressFragment_UnmarshalJSON_Invalid(t *testing.T) {
	var got AddressFragment
	assert.Error(t, json.Unmarshal([]byte(`["not","an","object"]`), &got))
}

func TestAddressFragment_IsEmpty(t *testing.T) {
	assert.True(t, AddressFragment{}.IsEmpty())
	assert.False(t, AddressFragment{Estado: "SP"}.IsEmpty())
}
