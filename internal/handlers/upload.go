package handlers

import (
	"log"
	"net/http"

	"github.com/warriorcare/warriorcare-backend/internal/config"
	"github.com/warriorcare/warriorcare-backend/internal/models"
	"github.com/warriorcare/warriorcare-backend/internal/services"
)

var cloudinaryService *services.CloudinaryService

func InitCloudinaryService(cfg *config.Config) error {
	service, err := services.NewCloudinaryService(
		cfg.CloudinaryName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return err
	}
	cloudinaryService = service
	return nil
}

type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

// UploadCredential uploads a clinician's credential document to Cloudinary
// and stores the URL on the clinician profile.
func UploadCredential(w http.ResponseWriter, r *http.Request) {
	if cloudinaryService == nil {
		writeError(w, http.StatusServiceUnavailable, "File upload service not available")
		return
	}

	ident := currentIdentity(r)
	if ident == nil {
		writeServiceError(w, services.NewAccessError(services.DenyUnauthenticated))
		return
	}
	if ident.Role != models.RoleClinician {
		writeServiceError(w, services.NewAccessError(services.DenyWrongRole))
		return
	}

	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form: "+err.Error())
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided: "+err.Error())
		return
	}
	defer file.Close()

	log.Printf("Uploading credential document: %s, size: %d bytes", fileHeader.Filename, fileHeader.Size)

	url, err := cloudinaryService.UploadFileFromHeader(r.Context(), fileHeader, "credentials")
	if err != nil {
		log.Printf("ERROR: Credential upload failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to upload file: "+err.Error())
		return
	}

	if err := store.SetClinicianCredentialPath(r.Context(), ident.ID, url); err != nil {
		log.Printf("ERROR: Failed to store credential path for %s: %v", ident.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to store credential path")
		return
	}

	log.Printf("✅ Credential uploaded to Cloudinary: %s", url)
	writeJSON(w, http.StatusOK, UploadResponse{
		Success: true,
		Message: "Credential uploaded successfully",
		URL:     url,
	})
}
