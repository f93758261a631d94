// Package config loads hookpatch run configuration from YAML and the environment.
package config

import "github.com/Sumatoshi-tech/hookpatch/pkg/patch"

// Run defaults.
const (
	DefaultBaseDir       = "src/pages"
	DefaultSkipUnchanged = false
	DefaultMarker        = patch.DefaultMarker
	DefaultImportAnchor  = patch.DefaultImportAnchor
	DefaultImportLine    = patch.DefaultImportLine
	DefaultCallLine      = patch.DefaultCallLine
	DefaultCallPattern   = patch.DefaultCallPattern
)

// Logging and telemetry defaults.
const (
	DefaultLogLevel = "warn"
	DefaultLogJSON  = false
	DefaultJobName  = "hookpatch"
)

// DefaultFileNames returns the pages touched by the scroll-to-top migration,
// in processing order.
func DefaultFileNames() []string {
	return []string{
		"AdDetails.tsx", "BusinessProfileComplete.tsx", "BusinessSignup.tsx",
		"BusinessTransfer.tsx", "BusinessTransferbuy.tsx", "BusinessTransfersell.tsx",
		"CreateAdvertisement.tsx", "ForgotPassword.tsx", "Index.tsx",
		"LanguageSelect.tsx", "Login.tsx", "MyAds.tsx", "MyReports.tsx",
		"NotFound.tsx", "Owner.tsx", "OwnershipTransfer.tsx", "PayToUnlock.tsx",
		"PhoneDetails.tsx", "PublishAd.tsx", "RegisterPhone.tsx", "Report.tsx",
		"ReportPhone.tsx", "Reset.tsx", "ResetRegister.tsx", "SearchIMEI.tsx",
		"Signup.tsx", "SpecialAd.tsx", "SplashScreen.tsx", "TransferHistory.tsx",
		"Welcome.tsx",
	}
}
