package connection

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// FBConnection initializes the Firebase app and its Firestore client. Both
// are nil when no credentials file is configured.
func FBConnection(ctx context.Context, cfg Config) (*firebase.App, *firestore.Client, error) {
	if cfg.CredentialsFile == "" {
		return nil, nil, nil
	}

	opt := option.WithCredentialsFile(cfg.CredentialsFile)
	var conf *firebase.Config
	if cfg.ProjectID != "" {
		conf = &firebase.Config{ProjectID: cfg.ProjectID}
	}
	app, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing Firestore: %w", err)
	}
	return app, client, nil
}
