package coingecko

import "strings"

// sectorCatalog maps sector keys to the asset ids that belong to them.
// Curated rather than fetched; upstream category endpoints are too coarse
// for allocation buckets.
var sectorCatalog = map[string][]string{
	"defi": {
		"uniswap", "aave", "maker", "curve-dao-token", "compound-governance-token",
		"lido-dao", "pancakeswap-token",
	},
	"layer1": {
		"bitcoin", "ethereum", "solana", "cardano", "avalanche-2",
		"polkadot", "near", "cosmos",
	},
	"layer2": {
		"arbitrum", "optimism", "matic-network", "immutable-x", "starknet",
	},
	"stablecoins": {
		"tether", "usd-coin", "dai", "first-digital-usd",
	},
	"ai": {
		"fetch-ai", "render-token", "bittensor", "the-graph", "singularitynet",
	},
	"meme": {
		"dogecoin", "shiba-inu", "pepe", "dogwifcoin", "bonk",
	},
	"gaming": {
		"the-sandbox", "axie-infinity", "gala", "decentraland", "beam-2",
	},
	"infrastructure": {
		"chainlink", "filecoin", "arweave", "helium", "akash-network",
	},
}

var assetSector = func() map[string]string {
	m := make(map[string]string)
	for sector, ids := range sectorCatalog {
		for _, id := range ids {
			m[id] = sector
		}
	}
	return m
}()

// Sectors returns the known sector keys.
func Sectors() []string {
	out := make([]string, 0, len(sectorCatalog))
	for s := range sectorCatalog {
		out = append(out, s)
	}
	return out
}

// SectorAssets returns the asset ids curated under a sector key.
func SectorAssets(sector string) []string {
	return sectorCatalog[strings.ToLower(sector)]
}

// SectorFor returns the sector an asset belongs to, or "" if uncurated.
func SectorFor(assetID string) string {
	return assetSector[strings.ToLower(assetID)]
}
