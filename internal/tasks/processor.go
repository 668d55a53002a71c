package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log"

	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"swappy/backend/internal/apperr"
	"swappy/backend/internal/chat"
	"swappy/backend/internal/config"
	"swappy/backend/internal/models"
	"swappy/backend/internal/search"
	"swappy/backend/internal/storage"
	"swappy/backend/internal/store"
)

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg      *config.Config
	products store.ProductStore
	users    store.UserStore
	index    search.Index
	chats    chat.IChatService
	storage  storage.IS3Storage
}

func NewTaskProcessor(
	cfg *config.Config,
	products store.ProductStore,
	users store.UserStore,
	index search.Index,
	chats chat.IChatService,
	storageService storage.IS3Storage,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:      cfg,
		products: products,
		users:    users,
		index:    index,
		chats:    chats,
		storage:  storageService,
	}
}

func parseObjectID(name, hex string) (primitive.ObjectID, error) {
	id, err := models.ParseID(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid %s %q in payload: %w", name, hex, asynq.SkipRetry)
	}
	return id, nil
}

func decodeProductPayload(t *asynq.Task) (primitive.ObjectID, error) {
	var payload ProductTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return parseObjectID("product_id", payload.ProductID)
}

// HandleSearchUpsertTask rebuilds a product's search document from the
// record store. A product deleted in the meantime has its document removed.
func (p *TaskProcessor) HandleSearchUpsertTask(ctx context.Context, t *asynq.Task) error {
	productID, err := decodeProductPayload(t)
	if err != nil {
		return err
	}

	product, err := p.products.FindByID(ctx, productID)
	if errors.Is(err, apperr.ErrNotFound) {
		log.Printf("Product %s no longer exists, dropping its search document", productID.Hex())
		return p.index.Delete(ctx, productID)
	}
	if err != nil {
		return err
	}

	seller, err := p.users.FindByID(ctx, product.SellerID)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		log.Printf("Seller %s of product %s not found, indexing without seller details", product.SellerID.Hex(), productID.Hex())
		seller = nil
	}

	if err := p.index.Upsert(ctx, models.NewProductSearchDocument(product, seller)); err != nil {
		return err
	}
	log.Printf("Search document upserted: ProductID=%s", productID.Hex())
	return nil
}

// HandleSearchSoldTask re-asserts the sold flag in the record store, then
// patches the search document. Both writes are idempotent.
func (p *TaskProcessor) HandleSearchSoldTask(ctx context.Context, t *asynq.Task) error {
	productID, err := decodeProductPayload(t)
	if err != nil {
		return err
	}

	if err := p.products.MarkSold(ctx, productID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Printf("Product %s no longer exists, skipping sold patch", productID.Hex())
			return fmt.Errorf("product %s not found: %w", productID.Hex(), asynq.SkipRetry)
		}
		return err
	}

	if err := p.index.PatchSold(ctx, productID, true); err != nil {
		return err
	}
	log.Printf("Search document marked sold: ProductID=%s", productID.Hex())
	return nil
}

func (p *TaskProcessor) HandleSearchDeleteTask(ctx context.Context, t *asynq.Task) error {
	productID, err := decodeProductPayload(t)
	if err != nil {
		return err
	}
	if err := p.index.Delete(ctx, productID); err != nil {
		return err
	}
	log.Printf("Search document deleted: ProductID=%s", productID.Hex())
	return nil
}

// HandleChatBootstrapTask opens the chat channel between the parties of an
// accepted swap. Running it twice leaves a single channel.
func (p *TaskProcessor) HandleChatBootstrapTask(ctx context.Context, t *asynq.Task) error {
	var payload ChatTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal chat task payload: %v: %w", err, asynq.SkipRetry)
	}
	swapID, err := parseObjectID("swap_id", payload.SwapID)
	if err != nil {
		return err
	}
	buyerID, err := parseObjectID("buyer_id", payload.BuyerID)
	if err != nil {
		return err
	}
	sellerID, err := parseObjectID("seller_id", payload.SellerID)
	if err != nil {
		return err
	}

	channel, err := p.chats.EnsureChannel(ctx, swapID, buyerID, sellerID)
	if err != nil {
		return err
	}
	log.Printf("Chat channel ready: ChannelID=%s, SwapID=%s", channel.ID, payload.SwapID)
	return nil
}

// resizableFormats maps decoder format names to the content type written back.
var resizableFormats = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

// encodeImage writes img in the format it was decoded from, so the object's
// key extension keeps matching its bytes.
func encodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 85})
	case "png":
		return png.Encode(w, img)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// HandleImageProcessTask downsizes an uploaded image whose width or height
// exceeds the configured maximum, overwriting the object in place.
func (p *TaskProcessor) HandleImageProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ImageTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal image task payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Printf("Processing image task: S3Key=%s", payload.S3Key)

	imgData, contentType, err := p.storage.Download(ctx, payload.S3Key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return fmt.Errorf("s3 object not found: %w", asynq.SkipRetry)
		}
		return err
	}

	maxSizeBytes := int64(p.cfg.ImageMaxSizeMB) * 1024 * 1024
	if int64(len(imgData)) > maxSizeBytes {
		log.Printf("Image %s exceeds max size (%d > %d bytes). Skipping.", payload.S3Key, len(imgData), maxSizeBytes)
		return fmt.Errorf("image exceeds max size: %w", asynq.SkipRetry)
	}

	img, format, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		log.Printf("Error decoding image for key %s: %v", payload.S3Key, err)
		return fmt.Errorf("unsupported image format or corrupt image: %w", asynq.SkipRetry)
	}

	maxDim := uint(p.cfg.ImageMaxDimension)
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	if uint(width) <= maxDim && uint(height) <= maxDim {
		log.Printf("Image %s (%s, %dx%d) within limits, leaving as is", payload.S3Key, format, width, height)
		return nil
	}

	outType, ok := resizableFormats[format]
	if !ok {
		// Animated GIFs would lose every frame but the first.
		log.Printf("Image %s (%s, %dx%d) is not a resizable format, leaving as is", payload.S3Key, format, width, height)
		return nil
	}

	resized := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := encodeImage(&buf, resized, format); err != nil {
		return fmt.Errorf("failed to re-encode resized image: %w", err)
	}
	if int64(buf.Len()) > maxSizeBytes {
		return fmt.Errorf("resized image still exceeds max size: %w", asynq.SkipRetry)
	}

	if err := p.storage.Overwrite(ctx, payload.S3Key, outType, buf.Bytes()); err != nil {
		return err
	}
	log.Printf("Resized image %s from %dx%d (%s, %s) to %dx%d", payload.S3Key, width, height, format, contentType,
		resized.Bounds().Dx(), resized.Bounds().Dy())
	return nil
}
