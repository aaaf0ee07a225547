// Package store provides SQLite-backed persistence for the concept layer,
// the durable work queues, and agent discoveries.
//
// Tables fall into three groups:
//   - Concept state: users, ideas, summaries, challenges, approaches,
//     coherent_actions, sessions, objectives, notifications, plus the
//     idea_objectives and watches link tables
//   - Work queues: queue_items, with status transitions
//     pending -> processing -> completed | failed and a claimed_at column
//     that drives crash recovery
//   - Discoveries: relationships, keyed by endpoint so re-discovery updates
//     score instead of inserting duplicates
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks instead of failing
//   - MaxOpenConns(1): SQLite supports one writer; a single connection also
//     keeps queue claims trivially exclusive within a process
//
// Schema changes ride PRAGMA user_version migrations; see runMigrations.
package store
