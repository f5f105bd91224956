package db

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Conn *pgxpool.Pool

// Init connects to Postgres and makes sure the schema is in place.
func Init(dsn string) {
	var err error
	Conn, err = pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}

	if err = Conn.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v\n", err)
	}

	log.Println("Connected to Postgres successfully")

	ensureUsersSchema()
	ensureListingsSchema()
	ensureReservationsSchema()
	ensureTransactionsSchema()
	ensureNotificationsSchema()
	ensureMessagingSchema()
	ensureReviewsSchema()
}

func ensureUsersSchema() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            phone TEXT NULL,
            role TEXT NOT NULL CHECK (role IN ('farmer','buyer','admin')),
            is_approved BOOLEAN NOT NULL DEFAULT FALSE,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_users_role_approved ON users(role, is_approved);

        CREATE TABLE IF NOT EXISTS farmer_profiles (
            farmer_id UUID PRIMARY KEY REFERENCES users(id),
            location TEXT NULL,
            trust_badge BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );

        CREATE TABLE IF NOT EXISTS buyer_profiles (
            buyer_id UUID PRIMARY KEY REFERENCES users(id),
            location TEXT NULL,
            preferred_delivery_method TEXT NOT NULL DEFAULT 'pickup'
                CHECK (preferred_delivery_method IN ('pickup','delivery','both')),
            delivery_address TEXT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
    `)
	if err != nil {
		log.Printf("failed to ensure users schema: %v", err)
	}
}

func ensureListingsSchema() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS listings (
            id UUID PRIMARY KEY,
            farmer_id UUID NOT NULL REFERENCES users(id),
            product_name TEXT NOT NULL CHECK (product_name <> ''),
            description TEXT NULL,
            price_cents BIGINT NOT NULL CHECK (price_cents > 0),
            quantity INTEGER NOT NULL CHECK (quantity >= 0),
            unit TEXT NOT NULL DEFAULT 'kg',
            image_url TEXT NULL,
            status TEXT NOT NULL DEFAULT 'available'
                CHECK (status IN ('available','reserved','sold')),
            archived BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_listings_farmer_status ON listings(farmer_id, status);
        CREATE INDEX IF NOT EXISTS idx_listings_status_created ON listings(status, created_at);
        CREATE INDEX IF NOT EXISTS idx_listings_product_name ON listings(product_name);
    `)
	if err != nil {
		log.Printf("failed to ensure listings schema: %v", err)
	}
}

func ensureReservationsSchema() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS reservations (
            id UUID PRIMARY KEY,
            buyer_id UUID NOT NULL REFERENCES users(id),
            listing_id UUID NOT NULL REFERENCES listings(id),
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            unit_price_cents BIGINT NOT NULL CHECK (unit_price_cents > 0),
            total_cents BIGINT NOT NULL CHECK (total_cents > 0),
            delivery_method TEXT NOT NULL DEFAULT 'pickup'
                CHECK (delivery_method IN ('pickup','delivery')),
            delivery_address TEXT NULL,
            status TEXT NOT NULL DEFAULT 'pending'
                CHECK (status IN ('pending','approved','rejected','payment_pending',
                                  'paid','ready_for_pickup','completed','cancelled')),
            buyer_notes TEXT NULL,
            farmer_notes TEXT NULL,
            rejection_reason TEXT NULL,
            approved_by UUID NULL REFERENCES users(id),
            approved_at TIMESTAMP WITH TIME ZONE NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_reservations_buyer_status ON reservations(buyer_id, status);
        CREATE INDEX IF NOT EXISTS idx_reservations_listing_status ON reservations(listing_id, status);
        CREATE INDEX IF NOT EXISTS idx_reservations_status_created ON reservations(status, created_at);
    `)
	if err != nil {
		log.Printf("failed to ensure reservations schema: %v", err)
	}
}

func ensureTransactionsSchema() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS transactions (
            id UUID PRIMARY KEY,
            reservation_id UUID NOT NULL UNIQUE REFERENCES reservations(id),
            buyer_id UUID NOT NULL REFERENCES users(id),
            farmer_id UUID NOT NULL REFERENCES users(id),
            total_cents BIGINT NOT NULL CHECK (total_cents > 0),
            payment_method TEXT NOT NULL DEFAULT 'cash'
                CHECK (payment_method IN ('cash','bank_transfer','mobile_money','other')),
            receipt_url TEXT NULL,
            receipt_notes TEXT NULL,
            verification_notes TEXT NULL,
            verified_by UUID NULL REFERENCES users(id),
            verified_at TIMESTAMP WITH TIME ZONE NULL,
            status TEXT NOT NULL DEFAULT 'pending_payment'
                CHECK (status IN ('pending_payment','receipt_uploaded','receipt_verified',
                                  'receipt_rejected','completed','cancelled')),
            delivery_method TEXT NOT NULL DEFAULT 'pickup'
                CHECK (delivery_method IN ('pickup','delivery')),
            delivery_address TEXT NULL,
            delivery_date TIMESTAMP WITH TIME ZONE NULL,
            delivery_notes TEXT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            completed_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_transactions_buyer ON transactions(buyer_id, status);
        CREATE INDEX IF NOT EXISTS idx_transactions_farmer ON transactions(farmer_id, status);
    `)
	if err != nil {
		log.Printf("failed to ensure transactions schema: %v", err)
	}
}

func ensureNotificationsSchema() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS notifications (
            id UUID PRIMARY KEY,
            user_id UUID NOT NULL REFERENCES users(id),
            type TEXT NOT NULL,
            title TEXT NOT NULL,
            message TEXT NOT NULL,
            reservation_id UUID NULL REFERENCES reservations(id),
            transaction_id UUID NULL REFERENCES transactions(id),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            read_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id) WHERE read_at IS NULL;
    `)
	if err != nil {
		log.Printf("failed to ensure notifications schema: %v", err)
	}
}

func ensureMessagingSchema() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS conversations (
            id UUID PRIMARY KEY,
            kind TEXT NOT NULL DEFAULT 'direct'
                CHECK (kind IN ('direct','product_inquiry','reservation_discussion')),
            title TEXT NULL,
            listing_id UUID NULL REFERENCES listings(id),
            reservation_id UUID NULL REFERENCES reservations(id),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            last_message_at TIMESTAMP WITH TIME ZONE NULL
        );

        CREATE TABLE IF NOT EXISTS conversation_participants (
            conversation_id UUID NOT NULL REFERENCES conversations(id),
            user_id UUID NOT NULL REFERENCES users(id),
            PRIMARY KEY (conversation_id, user_id)
        );

        CREATE TABLE IF NOT EXISTS messages (
            id UUID PRIMARY KEY,
            conversation_id UUID NOT NULL REFERENCES conversations(id),
            sender_id UUID NOT NULL REFERENCES users(id),
            content TEXT NOT NULL CHECK (content <> ''),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_messages_conversation_created ON messages(conversation_id, created_at);

        CREATE TABLE IF NOT EXISTS message_reads (
            message_id UUID NOT NULL REFERENCES messages(id),
            user_id UUID NOT NULL REFERENCES users(id),
            read_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (message_id, user_id)
        );
    `)
	if err != nil {
		log.Printf("failed to ensure messaging schema: %v", err)
	}
}

func ensureReviewsSchema() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS reviews (
            id UUID PRIMARY KEY,
            reservation_id UUID NOT NULL UNIQUE REFERENCES reservations(id),
            buyer_id UUID NOT NULL REFERENCES users(id),
            farmer_id UUID NOT NULL REFERENCES users(id),
            rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
            review_text TEXT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_reviews_farmer ON reviews(farmer_id);
    `)
	if err != nil {
		log.Printf("failed to ensure reviews schema: %v", err)
	}
}
