package firebase

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/foodmarket/provision-backend/config"
	"github.com/foodmarket/provision-backend/pkg/logger"
	"google.golang.org/api/option"
)

// Clients holds the Google clients the server may need. Either field is nil
// when the corresponding feature is not configured.
type Clients struct {
	App       *firebase.App
	Firestore *firestore.Client
	Auth      *auth.Client
}

func clientOptions(cfg *config.FirebaseConfig) []option.ClientOption {
	credFile := strings.TrimSpace(cfg.CredentialsFile)
	if credFile == "" {
		logger.Info("Using application default credentials for Firebase", nil)
		return nil
	}
	logger.Info("Using credentials file for Firebase", map[string]interface{}{
		"credentials_file": credFile,
	})
	return []option.ClientOption{option.WithCredentialsFile(credFile)}
}

// Init creates the Firebase app and the clients requested by the flags.
func Init(ctx context.Context, cfg *config.FirebaseConfig, withFirestore, withAuth bool) (*Clients, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	clients := &Clients{App: app}

	if withFirestore {
		if clients.Firestore, err = app.Firestore(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize firestore client: %w", err)
		}
		logger.Info("Firestore client initialized", map[string]interface{}{
			"project_id": cfg.ProjectID,
		})
	}

	if withAuth {
		if clients.Auth, err = app.Auth(ctx); err != nil {
			clients.Close()
			return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
		}
		logger.Info("Firebase Auth initialized", map[string]interface{}{
			"project_id": cfg.ProjectID,
		})
	}

	return clients, nil
}

// Close releases the Firestore connection.
func (c *Clients) Close() {
	if c == nil || c.Firestore == nil {
		return
	}
	if err := c.Firestore.Close(); err != nil {
		logger.Error("Failed to close Firestore client", err)
	}
}
