package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/prefeitura-rio/app-cadastro/internal/logging"
)

type fakeReportSource struct {
	csv string
	err error
}

func (s fakeReportSource) DownloadReport(ctx context.Context) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.csv)), nil
}

func TestReportExporter_WriteXLSX(t *testing.T) {
	_ = logging.InitLogger()
	source := fakeReportSource{csv: "\ufeffID,Nome,CPF,Telefone,CEP\n" +
		"1,Ana Souza,01234567890,21987654321,01310100\n" +
		"2,Bruno Lima,52998224725,,\n"}

	var buf bytes.Buffer
	require.NoError(t, NewReportExporter(source).WriteXLSX(context.Background(), &buf))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(reportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"ID", "Nome", "CPF", "Telefone", "CEP"}, rows[0])
	assert.Equal(t, []string{"1", "Ana Souza", "012.345.678-90", "(21) 98765-4321", "01310-100"}, rows[1])
	assert.Equal(t, "529.982.247-25", rows[2][2])
}

func TestReportExporter_Errors(t *testing.T) {
	_ = logging.InitLogger()

	err := NewReportExporter(fakeReportSource{csv: ""}).WriteXLSX(context.Background(), io.Discard)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	sourceErr := &APIError{StatusCode: 404}
	err = NewReportExporter(fakeReportSource{err: sourceErr}).WriteXLSX(context.Background(), io.Discard)
	assert.True(t, errors.Is(err, sourceErr))
}

func TestColumnFormatter(t *testing.T) {
	assert.Nil(t, columnFormatter("Nome"))
	assert.Equal(t, "529.982.247-25", columnFormatter(" cpf ")("52998224725"))
	assert.Equal(t, "(21) 3333-4444", columnFormatter("Telefone")("2133334444"))
	assert.Equal(t, "20040-020", columnFormatter("CEP")("20040020"))
}
