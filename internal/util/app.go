package util

func GetAppName() string {
	return "DossierFlow"
}

// GetDossierURL is the link sent in mails for a dossier.
func GetDossierURL(frontURL, dossierID string) string {
	return frontURL + "/dossiers/" + dossierID
}
