package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/phnam/docnest-upload-service/entity"
	"github.com/phnam/docnest-upload-service/infra"
	"github.com/phnam/docnest-upload-service/infra/produce"
	"github.com/phnam/docnest-upload-service/repository"
	"github.com/phnam/docnest-upload-service/utils"
)

// chunkSize is the maximum character count of a single document chunk.
const chunkSize = 2000

type IndexConsumer struct {
	channel    *amqp.Channel
	infra      *infra.Infra
	repository *repository.Repository
}

func NewIndexConsumer(channel *amqp.Channel, infra *infra.Infra, repo *repository.Repository) *IndexConsumer {
	return &IndexConsumer{
		channel:    channel,
		infra:      infra,
		repository: repo,
	}
}

func (c *IndexConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		produce.DocumentIndexQueue,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register document index consumer: %w", err)
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Index Consumer] Started listening for index jobs on queue: %s", produce.DocumentIndexQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.infra.Logger.InfoWithContextf(ctx, "[Index Consumer] Shutting down...")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.infra.Logger.WarningWithContextf(ctx, "[Index Consumer] Channel closed")
					return
				}
				c.handleIndexJob(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *IndexConsumer) handleIndexJob(ctx context.Context, msg amqp.Delivery) {
	c.infra.Logger.InfoWithContextf(ctx, "[Index Consumer] Received message: %s", string(msg.Body))

	var payload produce.DocumentIndexMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Index Consumer] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	if payload.DocumentID == "" {
		c.infra.Logger.ErrorWithContextf(ctx, nil, "[Index Consumer] Message has no document id")
		_ = msg.Nack(false, false)
		return
	}

	maxRetries := 3
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = c.indexDocument(ctx, payload)
		if err == nil {
			c.infra.Logger.InfoWithContextf(ctx, "[Index Consumer] Indexed document %s", payload.DocumentID)
			_ = msg.Ack(false)
			return
		}
		if isPermanentFailure(err) {
			c.infra.Logger.WarningWithContextf(ctx, "[Index Consumer] Dropping job for document %s: %v", payload.DocumentID, err)
			_ = msg.Nack(false, false)
			return
		}

		c.infra.Logger.ErrorWithContextf(ctx, err, "[Index Consumer] Attempt %d/%d failed for document %s: %v", attempt, maxRetries, payload.DocumentID, err)

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * 2 * time.Second)
		}
	}

	c.infra.Logger.ErrorWithContextf(ctx, err, "[Index Consumer] Failed after %d attempts, requeueing document %s", maxRetries, payload.DocumentID)
	_ = msg.Nack(false, true)
}

var errDocumentGone = errors.New("document no longer exists")

// isPermanentFailure reports whether a job can never succeed and must be
// dropped instead of requeued: the document is gone, or its backing object
// was never stored. Everything else is treated as transient.
func isPermanentFailure(err error) bool {
	return errors.Is(err, errDocumentGone) || errors.Is(err, infra.ErrObjectNotFound)
}

// indexDocument loads the document's text, records its character and line
// counts, and rewrites its chunks. Documents created without inline content
// read their text from the stored object.
func (c *IndexConsumer) indexDocument(ctx context.Context, payload produce.DocumentIndexMessage) error {
	document, err := c.repository.DocumentRepo.FindByID(ctx, payload.DocumentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if document == nil {
		return errDocumentGone
	}

	content := document.Content
	if strings.TrimSpace(content) == "" {
		content, err = c.loadContentFromStore(ctx, document)
		if err != nil {
			return err
		}
		if err := c.repository.DocumentRepo.UpdateContent(ctx, document.ID, content); err != nil {
			return fmt.Errorf("store extracted content: %w", err)
		}
	}

	charCount := len([]rune(content))
	lineCount := strings.Count(content, "\n") + 1

	if err := c.repository.DocumentRepo.UpdateContentStats(ctx, document.ID, charCount, lineCount); err != nil {
		return fmt.Errorf("update content stats: %w", err)
	}

	chunks := buildChunks(document.ID, content)
	if err := c.repository.DocumentChunkRepo.Replace(ctx, document.ID, chunks); err != nil {
		return fmt.Errorf("replace chunks: %w", err)
	}

	return nil
}

func (c *IndexConsumer) loadContentFromStore(ctx context.Context, document *entity.Document) (string, error) {
	key := document.Source
	if key == "" {
		return "", errDocumentGone
	}

	content, err := c.infra.Storage.ReadText(ctx, key)
	if err != nil {
		return "", fmt.Errorf("read object %s: %w", key, err)
	}

	return content, nil
}

// buildChunks splits content into rune-bounded pieces of at most chunkSize
// characters. Empty content yields no chunks.
func buildChunks(documentID, content string) []entity.DocumentChunk {
	runes := []rune(content)
	if len(runes) == 0 {
		return nil
	}

	var chunks []entity.DocumentChunk
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, entity.DocumentChunk{
			ID:         utils.NewID("chunk"),
			DocumentID: documentID,
			ChunkIndex: len(chunks),
			Text:       string(runes[start:end]),
		})
	}

	return chunks
}
