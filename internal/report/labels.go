package report

// Labels are the user-facing strings of a report in one culture.
type Labels struct {
	Hierarchy        string
	ItemList         string
	FileList         string
	ReferenceCode    string
	Title            string
	Dates            string
	AccessConditions string
	Locations        string
	Thumbnail        string
	Generated        string
}

var catalogue = map[string]Labels{
	"en": {
		Hierarchy:        "Archival description hierarchy:",
		ItemList:         "Item list",
		FileList:         "File list",
		ReferenceCode:    "Reference code",
		Title:            "Title",
		Dates:            "Dates",
		AccessConditions: "Access restrictions",
		Locations:        "Retrieval information",
		Thumbnail:        "Thumbnail",
		Generated:        "Report generated",
	},
	"fr": {
		Hierarchy:        "Hiérarchie de la description archivistique :",
		ItemList:         "Liste des pièces",
		FileList:         "Liste des dossiers",
		ReferenceCode:    "Cote",
		Title:            "Titre",
		Dates:            "Dates",
		AccessConditions: "Restrictions d'accès",
		Locations:        "Information de repérage",
		Thumbnail:        "Vignette",
		Generated:        "Rapport généré",
	},
}

// LabelsFor returns the labels of a culture, falling back to English.
func LabelsFor(culture string) Labels {
	if l, ok := catalogue[culture]; ok {
		return l
	}
	return catalogue["en"]
}

// Heading returns the report title for a type.
func (l Labels) Heading(t Type) string {
	if t == TypeFileList {
		return l.FileList
	}
	return l.ItemList
}
