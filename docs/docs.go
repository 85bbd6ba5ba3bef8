// Package docs registers the OpenAPI description of the JSON endpoints.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Informa o estado do serviço e do cache de CEP. O cache é opcional: uma falha no Redis deixa o serviço degradado, não indisponível.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Verifica a saúde do front-end",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.HealthResponse"}
                    }
                }
            }
        },
        "/sessao/{session}": {
            "delete": {
                "description": "Chamado quando a página é fechada ou trocada; resultados assíncronos pendentes da página são descartados.",
                "tags": ["sessao"],
                "summary": "Encerra a sessão de página",
                "parameters": [
                    {"type": "string", "description": "ID da sessão de página", "name": "session", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {
                        "description": "Sessão não encontrada",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            }
        },
        "/sessao/{session}/cep/{cep}": {
            "get": {
                "description": "Atualiza o CEP do formulário da sessão de página e, quando o CEP tem 8 dígitos, preenche bairro, município e estado. Resultados de buscas substituídas por outra mais recente voltam com applied=false.",
                "produces": ["application/json"],
                "tags": ["cep"],
                "summary": "Busca endereço pelo CEP",
                "parameters": [
                    {"type": "string", "description": "ID da sessão de página", "name": "session", "in": "path", "required": true},
                    {"type": "string", "description": "CEP com ou sem máscara", "name": "cep", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.CEPLookupResponse"}
                    },
                    "404": {
                        "description": "Sessão não encontrada",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "410": {
                        "description": "Página fechada",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "422": {
                        "description": "CEP incompleto",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            }
        },
        "/download-csv/arquivo.xlsx": {
            "get": {
                "description": "Converte o relatório CSV gerado pelo backend em uma planilha XLSX com CPF, telefone e CEP formatados.",
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["relatorio"],
                "summary": "Exporta o relatório em XLSX",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {
                        "description": "Relatório ainda não gerado",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    },
                    "502": {
                        "description": "Falha no backend",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "handlers.CEPLookupResponse": {
            "type": "object",
            "properties": {
                "applied": {"description": "Indica se o resultado foi aplicado ao formulário; falso quando uma busca mais recente o substituiu.", "type": "boolean"},
                "bairro": {"type": "string"},
                "municipio": {"type": "string"},
                "estado": {"type": "string"},
                "error": {"description": "Mensagem exibida sob o campo CEP quando a busca falha.", "type": "string"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {
                "services": {"type": "object", "additionalProperties": {"type": "string"}},
                "status": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "app-cadastro",
	Description:      "Front-end de cadastro de pessoas: páginas de cadastro, listagem, relatório e auditoria, e os endpoints JSON usados por elas.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
