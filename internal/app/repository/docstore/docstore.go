// Package docstore implements the repositories on Cloud Firestore.
package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/foodmarket/provision-backend/internal/app/repository"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	customersCollection  = "customers"
	productsCollection   = "products"
	provisionsCollection = "provisions"
	staffCollection      = "staff"
)

func translate(err error) error {
	switch status.Code(err) {
	case codes.OK:
		return err
	case codes.NotFound:
		return fmt.Errorf("%w: %w", repository.ErrNotFound, err)
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %w", repository.ErrDuplicate, err)
	}
	return err
}

// collect decodes every document of it into T, setting the id with setID.
func collect[T any](it *firestore.DocumentIterator, setID func(*T, string)) ([]T, error) {
	defer it.Stop()

	var out []T
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, translate(err)
		}
		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", doc.Ref.Path, err)
		}
		setID(&v, doc.Ref.ID)
		out = append(out, v)
	}
	return out, nil
}

// getDoc decodes one document into T.
func getDoc[T any](ctx context.Context, ref *firestore.DocumentRef) (*T, error) {
	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, translate(err)
	}
	var v T
	if err := snap.DataTo(&v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref.Path, err)
	}
	return &v, nil
}

// exists reports whether ref is present.
func exists(ctx context.Context, ref *firestore.DocumentRef) (bool, error) {
	_, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// takenBy returns the id of a document in q other than selfID, or "".
func takenBy(tx *firestore.Transaction, q firestore.Query, selfID string) (string, error) {
	docs, err := tx.Documents(q.Limit(2)).GetAll()
	if err != nil {
		return "", err
	}
	for _, d := range docs {
		if d.Ref.ID != selfID {
			return d.Ref.ID, nil
		}
	}
	return "", nil
}
