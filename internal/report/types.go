package report

import "archreport/internal/archive"

// Type is a report type as requested by the caller.
type Type string

const (
	TypeItemList         Type = "itemList"
	TypeFileList         Type = "fileList"
	TypeStorageLocations Type = "storageLocations"
	TypeBoxLabelCSV      Type = "boxLabelCsv"
)

// ParseType validates a report type. storageLocations and boxLabelCsv are
// accepted but produce nothing yet.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeItemList, TypeFileList, TypeStorageLocations, TypeBoxLabelCSV:
		return t, nil
	default:
		return "", archive.E(archive.KindInvalidReportType, "reportType", "Invalid report type: %s", s)
	}
}

// Level returns the level of description a list report collects, and false
// for report types that collect nothing.
func (t Type) Level() (archive.Level, bool) {
	switch t {
	case TypeItemList:
		return archive.LevelItem, true
	case TypeFileList:
		return archive.LevelFile, true
	default:
		return "", false
	}
}
