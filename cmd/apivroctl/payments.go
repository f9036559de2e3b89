package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"apivro/internal/domain/ports/adapter"
	invoiceAdapter "apivro/internal/infra/adapters/invoice"
	mailAdapter "apivro/internal/infra/adapters/mail"
	payAdapters "apivro/internal/infra/adapters/payment"
	storageAdapter "apivro/internal/infra/adapters/storage"
	pg "apivro/internal/infra/db/postgres"
	"apivro/internal/usecase"
)

func paymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Payment reconciliation",
	}

	var (
		olderThan time.Duration
		limit     int
	)
	sync := &cobra.Command{
		Use:   "sync",
		Short: "Re-read stale pending payments from the gateway and apply their status",
		Long: `Re-read stale pending payments from the gateway and apply their status.

A payment that turns out paid goes through the same cutover as a callback:
the previous subscription expires, the new one starts, and the invoice and
receipt email are attempted.

Examples:
  apivroctl payments sync
  apivroctl payments sync --older-than 1h --limit 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			gateway, err := payAdapters.NewTripayGateway(e.cfg.Tripay)
			if err != nil {
				return fmt.Errorf("tripay gateway: %w", err)
			}
			var storage adapter.ObjectStorage
			if e.cfg.S3.Bucket != "" {
				s3, err := storageAdapter.NewS3Storage(ctx, e.cfg.S3)
				if err != nil {
					return fmt.Errorf("s3: %w", err)
				}
				storage = s3
			}

			payRepo := pg.NewPaymentRepo(e.pool)
			profileRepo := pg.NewProfileRepo(e.pool)
			deviceRepo := pg.NewDeviceRepo(e.pool)
			invoices := usecase.NewInvoiceUseCase(payRepo, invoiceAdapter.NewPDFRenderer(e.cfg.Invoice), storage, e.log)
			notes := usecase.NewNotificationUseCase(profileRepo, deviceRepo, pg.NewNotificationRepo(e.pool),
				mailAdapter.NewSMTPMailer(e.cfg.SMTP, mailAdapter.WithBrand(e.cfg.Invoice.CompanyName)), e.cfg.HTTP.DevicesURL(), e.log)
			uc := usecase.NewPaymentUseCase(pg.NewTxManager(e.pool), payRepo, pg.NewPlanRepo(e.pool), pg.NewSubscriptionRepo(e.pool), profileRepo,
				gateway, payAdapters.NewSigner(e.cfg.Tripay.MerchantCode, e.cfg.Tripay.PrivateKey),
				usecase.PaymentOptions{Invoices: invoices, Notifications: notes}, e.log)

			n, err := uc.SyncStale(ctx, olderThan, limit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d payments\n", n)
			return nil
		},
	}
	sync.Flags().DurationVar(&olderThan, "older-than", 10*time.Minute, "only payments pending for at least this long")
	sync.Flags().IntVar(&limit, "limit", 200, "maximum payments to check")

	cmd.AddCommand(sync)
	return cmd
}
