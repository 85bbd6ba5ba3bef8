package services

import "strconv"

// Browser routes the controllers navigate to
const (
	FormPath     = "/cadastro-pessoa"
	ListPath     = "/listagem-pessoas"
	DownloadPath = "/download-csv"
	AuditPath    = "/auditoria"
)

// EditPath is the edit route for a person
func EditPath(id int64) string {
	return FormPath + "/" + strconv.FormatInt(id, 10)
}
