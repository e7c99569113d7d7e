package constants

// ModelFiles are the weight files the backend loads at runtime, in staging order.
var ModelFiles = []string{
	"hypertension.pt",
	"cimt_reg.pth",
	"vessel.pth",
	"fusion_cvd_noskewed.pth",
}

// Staging Defaults
const (
	DefaultModelSourceDir = "backend"
	DefaultModelDestDir   = "netlify/functions/models"
	ModelsDirName         = "models"
)
