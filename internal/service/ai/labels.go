package ai

// ImageLabels is the closed vocabulary of anatomical sites the classifier
// may assign to an endoscopic frame.
var ImageLabels = []string{
	"Esophagus",
	"Gastroesophageal junction",
	"Stomach body",
	"Stomach antrum",
	"Pylorus",
	"Duodenum",
	"Terminal ileum",
	"Ileocecal valve",
	"Cecum",
	"Appendiceal orifice",
	"Ascending colon",
	"Hepatic flexure",
	"Transverse colon",
	"Splenic flexure",
	"Descending colon",
	"Sigmoid colon",
	"Rectum",
	"Anorectal junction",
}
