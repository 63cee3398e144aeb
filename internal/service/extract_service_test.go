package service

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uniportal/degree-import-api/internal/models"
)

const testDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Approved class of degree corrections</w:t></w:r></w:p>
<w:tbl>
<w:tr>
<w:tc><w:p><w:r><w:t>Matric No</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>Class of Degree</w:t></w:r></w:p></w:tc>
</w:tr>
<w:tr>
<w:tc><w:p><w:r><w:t>ABC/12/0001</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>Ada Obi</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>Second Class Upper</w:t></w:r></w:p></w:tc>
</w:tr>
<w:tr>
<w:tc><w:p><w:r><w:t>ABC/12/0002</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>Bola Ade</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>2:1</w:t></w:r></w:p></w:tc>
</w:tr>
<w:tr>
<w:tc><w:p><w:r><w:t>no matric here</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>skipped</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>First Class</w:t></w:r></w:p></w:tc>
</w:tr>
</w:tbl>
<w:p><w:r><w:t>XYZ/34/5678 was upgraded to Second Class Lower after review.</w:t></w:r></w:p>
<w:p><w:r><w:t>This closing remark mentions no student.</w:t></w:r></w:p>
</w:body>
</w:document>`

func buildTestDocx(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	doc, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = doc.Write([]byte(testDocumentXML))
	require.NoError(t, err)

	rels, err := zw.Create("word/_rels/document.xml.rels")
	require.NoError(t, err)
	_, err = rels.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractServiceExtract(t *testing.T) {
	svc := NewExtractService(nil)

	rows, err := svc.Extract(buildTestDocx(t))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, "ABC/12/0001", rows[0].MatricNo)
	require.Equal(t, "Second Class Upper", rows[0].ClassOfDegree)
	require.Equal(t, models.SourceTable, rows[0].Source)
	require.NotNil(t, rows[0].RowNumber)
	require.Equal(t, 2, *rows[0].RowNumber)

	require.Equal(t, "ABC/12/0002", rows[1].MatricNo)
	require.Equal(t, "Second Class Upper", rows[1].ClassOfDegree, "2:1 normalises to the canonical value")

	require.Equal(t, "XYZ/34/5678", rows[2].MatricNo)
	require.Equal(t, "Second Class Lower", rows[2].ClassOfDegree)
	require.Equal(t, models.SourceText, rows[2].Source)
	require.Nil(t, rows[2].RowNumber)
}

func TestExtractServiceRejectsGarbage(t *testing.T) {
	svc := NewExtractService(nil)
	_, err := svc.Extract([]byte("this is not a zip archive"))
	require.Error(t, err)
}

func TestParseDocumentXML(t *testing.T) {
	tables, paragraphs, err := parseDocumentXML(testDocumentXML)
	require.NoError(t, err)

	require.Len(t, tables, 1)
	require.Len(t, tables[0], 4)
	require.Equal(t, []string{"ABC/12/0001", "Ada Obi", "Second Class Upper"}, tables[0][1])

	require.Len(t, paragraphs, 3)
	require.Contains(t, paragraphs[1], "XYZ/34/5678")
}

func TestNormalizeClassOfDegree(t *testing.T) {
	cases := map[string]string{
		"First Class":                  "First Class",
		"1st class honours":            "First Class",
		"2:1":                          "Second Class Upper",
		"2.1":                          "Second Class Upper",
		"Second Class (Upper Division)": "Second Class Upper",
		"second class upper":           "Second Class Upper",
		"2:2":                          "Second Class Lower",
		"Second Class Lower":           "Second Class Lower",
		"Third Class":                  "Third Class",
		"3rd class":                    "Third Class",
		"Pass":                         "Pass",
		"pass.":                        "Pass",
	}
	for input, want := range cases {
		got, ok := NormalizeClassOfDegree(input)
		require.True(t, ok, input)
		require.Equal(t, want, got, input)
	}

	for _, input := range []string{"", "Distinction", "Ada Obi", "ABC/12/0001"} {
		_, ok := NormalizeClassOfDegree(input)
		require.False(t, ok, input)
	}
}

func TestNormalizeMatric(t *testing.T) {
	require.Equal(t, "ABC120001", NormalizeMatric("abc/12/0001"))
	require.Equal(t, "ABC120001", NormalizeMatric("ABC-12-0001"))
	require.Equal(t, "ABC120001", NormalizeMatric(" abc 12 0001 "))
}
