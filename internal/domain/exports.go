package domain

import (
	interfaces "fortunecookie/internal/domain/interfaces"
	types "fortunecookie/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	PublicKey       = types.PublicKey
	Ed25519Private  = types.Ed25519Private
	Signature       = types.Signature
	Hash            = types.Hash
	Keypair         = types.Keypair
	Fingerprint     = types.Fingerprint
	Archetype       = types.Archetype
	Rarity          = types.Rarity
	DerivedAddress  = types.DerivedAddress
	CookieRecord    = types.CookieRecord
	StatsRecord     = types.StatsRecord
	OpenReceipt     = types.OpenReceipt
	Fortune         = types.Fortune
	Commitment      = types.Commitment
	Blockhash       = types.Blockhash
	AccountInfo     = types.AccountInfo
	SignatureStatus = types.SignatureStatus
	Memcmp          = types.Memcmp
	AccountFilter   = types.AccountFilter
	Landmark        = types.Landmark
	Hand            = types.Hand
	Frame           = types.Frame
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	IdentityService = interfaces.IdentityService
	CounterResolver = interfaces.CounterResolver
	CookieSubmitter = interfaces.CookieSubmitter
	RewardResolver  = interfaces.RewardResolver
	AggregateCache  = interfaces.AggregateCache
	FortunePool     = interfaces.FortunePool
	LedgerClient    = interfaces.LedgerClient
	Signer          = interfaces.Signer
	KeypairStore    = interfaces.KeypairStore
	ModelLoader     = interfaces.ModelLoader
	HandModel       = interfaces.HandModel
	Camera          = interfaces.Camera
	VideoStream     = interfaces.VideoStream
)

// Constants re-exported from the types subpackage.
const (
	ArchetypeDegen   = types.ArchetypeDegen
	ArchetypeBuilder = types.ArchetypeBuilder
	ArchetypeVC      = types.ArchetypeVC
	ArchetypeFounder = types.ArchetypeFounder

	RarityCommon    = types.RarityCommon
	RarityRare      = types.RarityRare
	RarityEpic      = types.RarityEpic
	RarityLegendary = types.RarityLegendary

	CommitmentProcessed = types.CommitmentProcessed
	CommitmentConfirmed = types.CommitmentConfirmed
	CommitmentFinalized = types.CommitmentFinalized
)

// Archetypes lists every archetype in wire order.
var Archetypes = types.Archetypes

// Parsers re-exported from the types subpackage.
var (
	ParsePublicKey = types.ParsePublicKey
	MustPublicKey  = types.MustPublicKey
	ParseSignature = types.ParseSignature
	ParseHash      = types.ParseHash
	ParseArchetype = types.ParseArchetype
	ParseRarity    = types.ParseRarity
)
