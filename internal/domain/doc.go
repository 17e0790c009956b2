// Package domain contains the core business entities, value objects, and
// domain logic of the Avatales storytelling platform. It represents the heart
// of the system, independent of any specific infrastructure or delivery
// mechanism. Entities own their invariants and record domain events describing
// every state change; the service layer drains those events after persistence.
package domain
