package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bharatprint/model"
	"bharatprint/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upload(name string) NewDocument {
	return NewDocument{
		FileName:      name,
		ContentType:   "application/pdf",
		Data:          []byte("%PDF-1.4 " + name),
		CustomerName:  "Asha",
		AllowDownload: true,
	}
}

func TestCreateDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "+919000000001")

	doc, err := f.svc.CreateDocument(ctx, f.db, owner, upload("invoice.pdf"))
	require.NoError(t, err)
	require.NotNil(t, doc.SharedLink)
	assert.True(t, strings.HasPrefix(doc.FileStorageKey, "docs/"+doc.ID+"/"))
	assert.Equal(t, testNow.Add(5*time.Minute), doc.AutoDeleteAt)
	assert.Equal(t, 1, f.blobs.Len())

	got, err := GetUserByID(f.db, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UploadsUsedThisMonth)
	assert.Equal(t, 1, got.DocumentsUploaded)
}

func TestCreateDocument_Limits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("monthly limit", func(t *testing.T) {
		owner := testutil.CreateUser(t, f.db, "+919000000001", func(u *model.User) { u.UploadsUsedThisMonth = 20 })
		_, err := f.svc.CreateDocument(ctx, f.db, owner, upload("a.pdf"))
		assert.ErrorIs(t, err, ErrLimitReached)
	})

	t.Run("stale counters are rechecked in the database", func(t *testing.T) {
		owner := testutil.CreateUser(t, f.db, "+919000000002", func(u *model.User) { u.UploadsUsedThisMonth = 19 })
		stale := *owner
		_, err := f.svc.CreateDocument(ctx, f.db, owner, upload("a.pdf"))
		require.NoError(t, err)
		_, err = f.svc.CreateDocument(ctx, f.db, &stale, upload("b.pdf"))
		assert.ErrorIs(t, err, ErrLimitReached)
	})

	t.Run("file size", func(t *testing.T) {
		owner := testutil.CreateUser(t, f.db, "+919000000003")
		in := upload("big.pdf")
		in.Data = make([]byte, MaxUploadBytes+1)
		_, err := f.svc.CreateDocument(ctx, f.db, owner, in)
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("free plan timers", func(t *testing.T) {
		owner := testutil.CreateUser(t, f.db, "+919000000004")
		in := upload("a.pdf")
		in.DeleteAfter = 15
		_, err := f.svc.CreateDocument(ctx, f.db, owner, in)
		assert.ErrorIs(t, err, ErrTimerNotAllowed)
	})

	t.Run("trial plan timers", func(t *testing.T) {
		owner := testutil.CreateUser(t, f.db, "+919000000005", func(u *model.User) {
			u.SubscriptionStatus = model.SubscriptionTrial
			u.MonthlyUploadLimit = 999999
		})
		in := upload("a.pdf")
		in.DeleteAfter = 15
		doc, err := f.svc.CreateDocument(ctx, f.db, owner, in)
		require.NoError(t, err)
		assert.Equal(t, 15, doc.SelfDestructMins)

		in.DeleteAfter = 30
		_, err = f.svc.CreateDocument(ctx, f.db, owner, in)
		assert.ErrorIs(t, err, ErrTimerNotAllowed)
	})
}

func TestRevealSharedDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "+919000000001")

	doc, err := f.svc.CreateDocument(ctx, f.db, owner, upload("a.pdf"))
	require.NoError(t, err)

	for i := 1; i <= 2; i++ {
		seen, err := f.svc.RevealSharedDocument(f.db, *doc.SharedLink)
		require.NoError(t, err)
		assert.Equal(t, i, seen.ShareViewCount)
	}

	_, err = f.svc.RevealSharedDocument(f.db, "missing")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	f.clock.Advance(5 * time.Minute)
	_, err = f.svc.RevealSharedDocument(f.db, *doc.SharedLink)
	assert.ErrorIs(t, err, ErrDocumentExpired)
}

func TestRevealSharedDocument_OneTimeViewIsExactlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "+919000000001")

	in := upload("secret.pdf")
	in.OneTimeView = true
	doc, err := f.svc.CreateDocument(ctx, f.db, owner, in)
	require.NoError(t, err)

	const readers = 8
	var wins, consumed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RevealSharedDocument(f.db, *doc.SharedLink)
			switch {
			case err == nil:
				wins.Add(1)
			case err == ErrOneTimeConsumed:
				consumed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins.Load())
	assert.EqualValues(t, readers-1, consumed.Load())

	var stored model.Document
	require.NoError(t, f.db.First(&stored, "id = ?", doc.ID).Error)
	assert.Equal(t, 1, stored.ShareViewCount)
}

func TestSharedDownload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "+919000000001")

	doc, err := f.svc.CreateDocument(ctx, f.db, owner, upload("a.pdf"))
	require.NoError(t, err)
	got, data, err := f.svc.SharedDownload(ctx, f.db, *doc.SharedLink)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, "%PDF-1.4 a.pdf", string(data))

	in := upload("locked.pdf")
	in.AllowDownload = false
	locked, err := f.svc.CreateDocument(ctx, f.db, owner, in)
	require.NoError(t, err)
	_, _, err = f.svc.SharedDownload(ctx, f.db, *locked.SharedLink)
	assert.ErrorIs(t, err, ErrDownloadForbidden)

	in = upload("once.pdf")
	in.OneTimeView = true
	once, err := f.svc.CreateDocument(ctx, f.db, owner, in)
	require.NoError(t, err)
	_, _, err = f.svc.SharedDownload(ctx, f.db, *once.SharedLink)
	assert.ErrorIs(t, err, ErrDownloadForbidden)
	_, err = f.svc.RevealSharedDocument(f.db, *once.SharedLink)
	require.NoError(t, err)
	_, _, err = f.svc.SharedDownload(ctx, f.db, *once.SharedLink)
	assert.NoError(t, err)

	_, _, err = f.svc.SharedDownload(ctx, f.db, "missing")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDeleteDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, f.db, "+919000000001")

	doc, err := f.svc.CreateDocument(ctx, f.db, owner, upload("a.pdf"))
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteDocument(ctx, f.db, doc))

	assert.Zero(t, f.blobs.Len())
	stored, err := GetOwnedDocument(f.db, doc.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentDeleted, stored.Status)
	assert.True(t, stored.BlobPurged)
	require.NotNil(t, stored.DeletedAt)

	_, err = f.svc.RevealSharedDocument(f.db, *doc.SharedLink)
	assert.ErrorIs(t, err, ErrDocumentExpired)
}

func TestCreateCustomerUpload(t *testing.T) {
	f := newFixture(t)
	merchant := testutil.CreateUser(t, f.db, "+919000000001")

	doc, err := f.svc.CreateCustomerUpload(context.Background(), f.db, merchant, CustomerUpload{
		FileName:     "photo.jpg",
		ContentType:  "image/jpeg",
		Data:         []byte("jpeg"),
		SelfDestruct: 10,
	})
	require.NoError(t, err)
	assert.True(t, doc.CustomerUploaded)
	assert.Nil(t, doc.SharedLink)
	assert.False(t, doc.AllowDownload)
	assert.True(t, strings.HasPrefix(doc.FileStorageKey, "customer-uploads/"))
	assert.Equal(t, testNow.Add(10*time.Minute), doc.AutoDeleteAt)

	got, err := GetUserByID(f.db, merchant.ID)
	require.NoError(t, err)
	assert.Zero(t, got.UploadsUsedThisMonth)
	assert.Equal(t, merchant.DocumentsUploaded+1, got.DocumentsUploaded)

	_, err = f.svc.CreateCustomerUpload(context.Background(), f.db, merchant, CustomerUpload{
		FileName: "scan.pdf",
		Data:     []byte("pdf"),
	})
	require.NoError(t, err)
	got, err = GetUserByID(f.db, merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, merchant.DocumentsUploaded+2, got.DocumentsUploaded)
	assert.Zero(t, got.UploadsUsedThisMonth)
}

func TestCreateCustomerUpload_CapsSelfDestruct(t *testing.T) {
	f := newFixture(t)
	merchant := testutil.CreateUser(t, f.db, "+919000000001")

	doc, err := f.svc.CreateCustomerUpload(context.Background(), f.db, merchant, CustomerUpload{
		FileName:     "photo.jpg",
		Data:         []byte("jpeg"),
		SelfDestruct: 1 << 30,
	})
	require.NoError(t, err)
	assert.Equal(t, MaxSelfDestructMinutes, doc.SelfDestructMins)
	assert.Equal(t, testNow.Add(24*time.Hour), doc.AutoDeleteAt)
}

func TestCreateCustomerUpload_RemovesBlobWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	merchant := testutil.CreateUser(t, f.db, "+919000000001")
	require.NoError(t, f.db.Migrator().DropTable(&model.Document{}))

	_, err := f.svc.CreateCustomerUpload(context.Background(), f.db, merchant, CustomerUpload{
		FileName: "photo.jpg",
		Data:     []byte("jpeg"),
	})
	require.Error(t, err)
	assert.Zero(t, f.blobs.Len())

	got, err := GetUserByID(f.db, merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, merchant.DocumentsUploaded, got.DocumentsUploaded)
}

func TestSecondsLeft(t *testing.T) {
	end := testNow.Add(90 * time.Second)
	doc := &model.Document{AutoDeleteAt: end}
	assert.Equal(t, 90, SecondsLeft(doc, testNow))
	assert.Zero(t, SecondsLeft(doc, end.Add(time.Minute)))
}
