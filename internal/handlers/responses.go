package handlers

import "time"

// ErrorResponse is the body of every JSON error
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports the state of the front-end and its dependencies
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// CEPLookupResponse is the outcome of a postal code lookup for a form
// swagger:model
// @description Resultado da busca de CEP aplicada ao formulário da página.
type CEPLookupResponse struct {
	// Indica se o resultado foi aplicado ao formulário; falso quando uma busca mais recente o substituiu.
	Applied   bool   `json:"applied"`
	Bairro    string `json:"bairro,omitempty"`
	Municipio string `json:"municipio,omitempty"`
	Estado    string `json:"estado,omitempty"`
	// Mensagem exibida sob o campo CEP quando a busca falha.
	Error string `json:"error,omitempty"`
}
