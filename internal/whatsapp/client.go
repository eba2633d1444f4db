package whatsapp

import (
	"context"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"
)

type Client struct {
	WAClient  *whatsmeow.Client
	handler   *Handler
	container *sqlstore.Container
	log       zerolog.Logger
}

func NewClient(handler *Handler, dbPath string, logger zerolog.Logger) (*Client, error) {
	dbLog := waLog.Stdout("Database", "WARN", true)
	clientLog := waLog.Stdout("Client", "WARN", true)

	container, err := sqlstore.New(context.Background(), "sqlite3", "file:"+dbPath+"?_foreign_keys=on", dbLog)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get device store: %w", err)
	}

	waClient := whatsmeow.NewClient(deviceStore, clientLog)

	c := &Client{
		WAClient:  waClient,
		handler:   handler,
		container: container,
		log:       logger,
	}

	if handler != nil {
		waClient.AddEventHandler(handler.HandleEvent)
	}

	return c, nil
}

// Connect starts the WhatsApp session. When no device is paired yet it
// prints a QR code for linking and blocks until pairing finishes or the
// code expires.
func (c *Client) Connect(ctx context.Context) error {
	if c.IsLoggedIn() {
		return c.WAClient.Connect()
	}

	qrChan, err := c.WAClient.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}

	if err := c.WAClient.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	for evt := range qrChan {
		switch evt.Event {
		case "code":
			DisplayQR(evt.Code)
		case "success":
			c.log.Info().Msg("whatsapp paired successfully")
			return nil
		case "timeout":
			return fmt.Errorf("QR code expired before pairing completed")
		}
	}

	return nil
}

func (c *Client) IsLoggedIn() bool {
	return c.WAClient.Store.ID != nil
}

func (c *Client) Disconnect() {
	c.WAClient.Disconnect()
}
