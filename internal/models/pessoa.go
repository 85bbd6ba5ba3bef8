package models

import (
	"encoding/json"
	"strings"
)

// Pessoa is a person record as exchanged with the backend API.
// CPF, Telefone and Endereco.CEP always hold canonical digit strings.
type Pessoa struct {
	ID       *int64    `json:"id,omitempty"`
	Nome     string    `json:"nome"`
	Telefone string    `json:"telefone"`
	CPF      string    `json:"cpf"`
	Endereco *Endereco `json:"endereco,omitempty"`
} // @name Pessoa

// Endereco is the address owned by a Pessoa. Bairro, Municipio and Estado
// come from the postal code lookup and are never typed by the user.
type Endereco struct {
	ID          *int64 `json:"id,omitempty"`
	CEP         string `json:"cep"`
	Numero      string `json:"numero"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Municipio   string `json:"municipio"`
	Estado      string `json:"estado"`
} // @name Endereco

// HasID reports whether the person was already persisted by the backend
func (p Pessoa) HasID() bool {
	return p.ID != nil
}

// DisplayName returns the trimmed name, used in list messages
func (p Pessoa) DisplayName() string {
	return strings.TrimSpace(p.Nome)
}

// AddressFragment is the subset of an address returned by the postal code
// lookup. The backend has used both ViaCEP naming (localidade, uf) and its
// own naming (municipio, estado); either is accepted.
type AddressFragment struct {
	Bairro    string `json:"bairro"`
	Municipio string `json:"municipio"`
	Estado    string `json:"estado"`
} // @name AddressFragment

// UnmarshalJSON accepts localidade|municipio and uf|estado
func (a *AddressFragment) UnmarshalJSON(data []byte) error {
	var raw struct {
		Bairro     string `json:"bairro"`
		Localidade string `json:"localidade"`
		Municipio  string `json:"municipio"`
		UF         string `json:"uf"`
		Estado     string `json:"estado"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	a.Bairro = raw.Bairro
	a.Municipio = firstNonEmpty(raw.Localidade, raw.Municipio)
	a.Estado = firstNonEmpty(raw.UF, raw.Estado)
	return nil
}

// IsEmpty reports whether no address field was filled
func (a AddressFragment) IsEmpty() bool {
	return a.Bairro == "" && a.Municipio == "" && a.Estado == ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
