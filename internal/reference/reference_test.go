package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "refs.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseCSV(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		want    []Entry
		wantErr string
	}{
		{
			name:    "exact headers",
			content: "table_name,field_name\ncustomers,email\nCustomers,SSN\n",
			want:    []Entry{{Table: "customers", Field: "email"}, {Table: "Customers", Field: "SSN"}},
		},
		{
			name:    "contains fallback headers",
			content: "Source Table,Sensitive Field\nusers,first_name\n",
			want:    []Entry{{Table: "users", Field: "first_name"}},
		},
		{
			name:    "blank rows skipped",
			content: "table_name,field_name\ncustomers,email\n,\nusers,\n",
			want:    []Entry{{Table: "customers", Field: "email"}},
		},
		{
			name:    "empty data section is valid",
			content: "table_name,field_name\n",
			want:    []Entry{},
		},
		{
			name:    "missing columns",
			content: "a,b\nx,y\n",
			wantErr: "columns containing 'table' and 'field'",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entries, err := ParseCSV(writeCSV(t, tc.content))
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, entries)
		})
	}
}

func TestParseExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.xlsx")

	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	require.NoError(t, workbook.SetSheetRow(sheet, "A1", &[]string{"table_name", "field_name"}))
	require.NoError(t, workbook.SetSheetRow(sheet, "A2", &[]string{"customers", "email"}))
	require.NoError(t, workbook.SetSheetRow(sheet, "A3", &[]string{"users", "date_of_birth"}))
	require.NoError(t, workbook.SaveAs(path))
	require.NoError(t, workbook.Close())

	entries, err := ParseExcel(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "customers.email", entries[0].Key())
	assert.Equal(t, "users.date_of_birth", entries[1].Key())
}

func TestParseFileDispatch(t *testing.T) {
	_, err := ParseFile(writeCSV(t, "table_name,field_name\n"))
	assert.NoError(t, err)

	_, err = ParseFile("refs.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported reference file type")
}
