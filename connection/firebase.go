package connection

import (
	"context"
	"fmt"

	"bharatprint/config"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Firebase bundles the Admin SDK clients the API uses.
type Firebase struct {
	Auth      *auth.Client
	Firestore *firestore.Client
	Bucket    *gcs.BucketHandle
}

func (f *Firebase) Close() error {
	if f == nil || f.Firestore == nil {
		return nil
	}
	return f.Firestore.Close()
}

// FBConnection returns nil when no service account is configured.
func FBConnection(ctx context.Context, cfg config.FirebaseConfig) (*Firebase, error) {
	if cfg.CredentialsPath == "" {
		return nil, nil
	}

	opt := option.WithCredentialsFile(cfg.CredentialsPath)
	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: cfg.StorageBucket}, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Auth client: %w", err)
	}
	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firestore client: %w", err)
	}

	fb := &Firebase{Auth: authClient, Firestore: firestoreClient}
	if cfg.StorageBucket != "" {
		storageClient, err := app.Storage(ctx)
		if err != nil {
			_ = firestoreClient.Close()
			return nil, fmt.Errorf("error getting Storage client: %w", err)
		}
		bucket, err := storageClient.DefaultBucket()
		if err != nil {
			_ = firestoreClient.Close()
			return nil, fmt.Errorf("error opening bucket %s: %w", cfg.StorageBucket, err)
		}
		fb.Bucket = bucket
	}
	return fb, nil
}
