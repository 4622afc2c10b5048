// Package seed loads a synthetic corpus of historical crisis incidents into
// the vector store so matching can be demoed and tested without real data.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/echoguardhq/echoguard/pkg/crisis"
	"github.com/echoguardhq/echoguard/pkg/embeddings"
	"github.com/echoguardhq/echoguard/pkg/vector"
)

// Entry is one historical incident in the demo corpus.
type Entry struct {
	Description string
	AgeHours    float64
	Meta        crisis.Meta
}

// Entries returns the built-in demo corpus. Ages are relative so seeded
// data always spans the decay window regardless of when it is loaded.
func Entries() []Entry {
	return []Entry{
		{
			Description: "River overflowed its banks after sustained monsoon rain, flooding low-lying residential districts and cutting off two access roads",
			AgeHours:    6,
			Meta: crisis.Meta{
				Type:           "flood",
				Location:       "Riverside district",
				Severity:       crisis.SeverityHigh,
				Protocol:       "flood",
				AffectedPeople: 1200,
				Casualties:     2,
				DamageEstimate: "$4.5M",
				ResponseTime:   "45 min",
			},
		},
		{
			Description: "Flash flooding in the market quarter, waist-deep water receding slowly, several shops inundated",
			AgeHours:    30,
			Meta: crisis.Meta{
				Type:           "flood",
				Location:       "Market quarter",
				Severity:       crisis.SeverityMedium,
				Protocol:       "flood",
				AffectedPeople: 400,
				DamageEstimate: "$800K",
				ResponseTime:   "60 min",
			},
		},
		{
			Description: "Dam spillway released at capacity overnight, downstream villages warned to move livestock and vehicles to high ground",
			AgeHours:    14,
			Meta: crisis.Meta{
				Type:           "flood",
				Location:       "Lower valley villages",
				Severity:       crisis.SeverityHigh,
				Protocol:       "flood",
				AffectedPeople: 2600,
				DamageEstimate: "$1.2M",
				ResponseTime:   "40 min",
			},
		},
		{
			Description: "Urban drainage overwhelmed during cloudburst, underpasses submerged and commuter rail suspended for the evening",
			AgeHours:    55,
			Meta: crisis.Meta{
				Type:           "flood",
				Location:       "Central business district",
				Severity:       crisis.SeverityMedium,
				Protocol:       "flood",
				AffectedPeople: 5000,
				DamageEstimate: "$3M",
				ResponseTime:   "35 min",
			},
		},
		{
			Description: "Seasonal river crested above flood stage for the third day, sandbag lines holding along the levee",
			AgeHours:    110,
			Meta: crisis.Meta{
				Type:           "flood",
				Location:       "North levee reach",
				Severity:       crisis.SeverityLow,
				Protocol:       "flood",
				AffectedPeople: 150,
				ResponseTime:   "2 hours",
			},
		},
		{
			Description: "Industrial warehouse fire with thick black smoke, chemical storage on site, two blocks evacuated",
			AgeHours:    3,
			Meta: crisis.Meta{
				Type:           "fire",
				Location:       "Industrial estate",
				Severity:       crisis.SeverityCritical,
				Protocol:       "fire",
				AffectedPeople: 350,
				Casualties:     5,
				DamageEstimate: "$12M",
				ResponseTime:   "15 min",
			},
		},
		{
			Description: "Grass fire along the highway shoulder, contained by first responders before reaching farmland",
			AgeHours:    80,
			Meta: crisis.Meta{
				Type:           "fire",
				Location:       "Highway 9 corridor",
				Severity:       crisis.SeverityLow,
				Protocol:       "fire",
				AffectedPeople: 10,
				ResponseTime:   "25 min",
			},
		},
		{
			Description: "Apartment block fire spread through the stairwell before dawn, residents rescued from upper floors by ladder",
			AgeHours:    9,
			Meta: crisis.Meta{
				Type:           "fire",
				Location:       "Eastgate towers",
				Severity:       crisis.SeverityHigh,
				Protocol:       "fire",
				AffectedPeople: 220,
				Casualties:     3,
				DamageEstimate: "$6M",
				ResponseTime:   "12 min",
			},
		},
		{
			Description: "Wildfire front advancing on pine plantations, water bombers rotating and a farming hamlet evacuated as a precaution",
			AgeHours:    40,
			Meta: crisis.Meta{
				Type:           "fire",
				Location:       "Pinewood ridge",
				Severity:       crisis.SeverityHigh,
				Protocol:       "fire",
				AffectedPeople: 900,
				DamageEstimate: "$20M",
				ResponseTime:   "50 min",
			},
		},
		{
			Description: "Electrical fire in a substation knocked out power to the port district, contained without structural spread",
			AgeHours:    66,
			Meta: crisis.Meta{
				Type:           "fire",
				Location:       "Port district substation",
				Severity:       crisis.SeverityMedium,
				Protocol:       "fire",
				AffectedPeople: 12000,
				DamageEstimate: "$2.5M",
				ResponseTime:   "18 min",
			},
		},
		{
			Description: "Magnitude 6.1 earthquake, partial collapse of older masonry buildings, aftershocks ongoing",
			AgeHours:    12,
			Meta: crisis.Meta{
				Type:           "earthquake",
				Location:       "Old town center",
				Severity:       crisis.SeverityCritical,
				Protocol:       "earthquake",
				AffectedPeople: 8000,
				Casualties:     34,
				DamageEstimate: "$95M",
				ResponseTime:   "20 min",
			},
		},
		{
			Description: "Magnitude 4.8 aftershock cracked the hospital's east wing, patients moved to field tents in the parking lot",
			AgeHours:    5,
			Meta: crisis.Meta{
				Type:           "earthquake",
				Location:       "District hospital",
				Severity:       crisis.SeverityHigh,
				Protocol:       "earthquake",
				AffectedPeople: 600,
				DamageEstimate: "$8M",
				ResponseTime:   "10 min",
			},
		},
		{
			Description: "Shallow magnitude 5.4 quake toppled a highway overpass pillar, bridge closed pending structural inspection",
			AgeHours:    36,
			Meta: crisis.Meta{
				Type:           "earthquake",
				Location:       "Ring road interchange",
				Severity:       crisis.SeverityHigh,
				Protocol:       "earthquake",
				AffectedPeople: 4000,
				Casualties:     2,
				DamageEstimate: "$15M",
				ResponseTime:   "30 min",
			},
		},
		{
			Description: "Minor tremor swarm rattled windows across the suburbs, no structural damage reported after inspections",
			AgeHours:    70,
			Meta: crisis.Meta{
				Type:           "earthquake",
				Location:       "Western suburbs",
				Severity:       crisis.SeverityInfo,
				Protocol:       "earthquake",
				AffectedPeople: 0,
				ResponseTime:   "1 hour",
			},
		},
		{
			Description: "Magnitude 7.2 earthquake last week left the old quarter cordoned off, demolition crews clearing unsafe facades",
			AgeHours:    168,
			Meta: crisis.Meta{
				Type:           "earthquake",
				Location:       "Historic quarter",
				Severity:       crisis.SeverityCritical,
				Protocol:       "earthquake",
				AffectedPeople: 15000,
				Casualties:     89,
				DamageEstimate: "$310M",
				ResponseTime:   "25 min",
			},
		},
		{
			Description: "Hillside landslide after heavy rain buried a section of the mountain road, vehicles trapped",
			AgeHours:    18,
			Meta: crisis.Meta{
				Type:           "landslide",
				Location:       "Mountain pass road",
				Severity:       crisis.SeverityHigh,
				Protocol:       "landslide",
				AffectedPeople: 60,
				Casualties:     1,
				DamageEstimate: "$2M",
				ResponseTime:   "90 min",
			},
		},
		{
			Description: "Mudslide swept through terraced farms above the reservoir, irrigation channels blocked with debris",
			AgeHours:    8,
			Meta: crisis.Meta{
				Type:           "landslide",
				Location:       "Reservoir terraces",
				Severity:       crisis.SeverityMedium,
				Protocol:       "landslide",
				AffectedPeople: 300,
				DamageEstimate: "$1.5M",
				ResponseTime:   "2 hours",
			},
		},
		{
			Description: "Slope failure undercut a row of hillside houses, residents evacuated while engineers assess the scarp",
			AgeHours:    28,
			Meta: crisis.Meta{
				Type:           "landslide",
				Location:       "Hillcrest settlement",
				Severity:       crisis.SeverityHigh,
				Protocol:       "landslide",
				AffectedPeople: 180,
				DamageEstimate: "$4M",
				ResponseTime:   "70 min",
			},
		},
		{
			Description: "Rockfall onto the coastal rail line derailed a freight wagon, service diverted while the cutting is netted",
			AgeHours:    52,
			Meta: crisis.Meta{
				Type:           "landslide",
				Location:       "Coastal rail cutting",
				Severity:       crisis.SeverityMedium,
				Protocol:       "landslide",
				AffectedPeople: 40,
				DamageEstimate: "$900K",
				ResponseTime:   "80 min",
			},
		},
		{
			Description: "Old quarry face slumped after a wet month, access track closed and monitoring stakes installed",
			AgeHours:    130,
			Meta: crisis.Meta{
				Type:           "landslide",
				Location:       "Disused quarry",
				Severity:       crisis.SeverityLow,
				Protocol:       "landslide",
				AffectedPeople: 5,
				ResponseTime:   "4 hours",
			},
		},
		{
			Description: "Category 3 cyclone made landfall on the coast, widespread roof damage and power outages across the peninsula",
			AgeHours:    48,
			Meta: crisis.Meta{
				Type:           "cyclone",
				Location:       "Coastal peninsula",
				Severity:       crisis.SeverityCritical,
				Protocol:       "cyclone",
				AffectedPeople: 25000,
				Casualties:     11,
				DamageEstimate: "$150M",
				ResponseTime:   "2 hours",
			},
		},
		{
			Description: "Tropical storm warning upgraded, fishing fleet recalled to harbor, coastal shelters opened",
			AgeHours:    96,
			Meta: crisis.Meta{
				Type:           "cyclone",
				Location:       "Fishing harbor",
				Severity:       crisis.SeverityMedium,
				Protocol:       "cyclone",
				AffectedPeople: 3000,
				ResponseTime:   "3 hours",
			},
		},
		{
			Description: "Cyclone outer bands lashing the barrier islands, storm surge flooding the ferry terminal and beach roads",
			AgeHours:    4,
			Meta: crisis.Meta{
				Type:           "cyclone",
				Location:       "Barrier islands",
				Severity:       crisis.SeverityHigh,
				Protocol:       "cyclone",
				AffectedPeople: 7000,
				Casualties:     0,
				DamageEstimate: "$18M",
				ResponseTime:   "90 min",
			},
		},
		{
			Description: "Post-cyclone cleanup underway, downed transmission towers leaving the inland towns without power for a second day",
			AgeHours:    60,
			Meta: crisis.Meta{
				Type:           "cyclone",
				Location:       "Inland towns",
				Severity:       crisis.SeverityHigh,
				Protocol:       "cyclone",
				AffectedPeople: 18000,
				Casualties:     4,
				DamageEstimate: "$60M",
				ResponseTime:   "2 hours",
			},
		},
		{
			Description: "Weakening tropical depression dumped record rain on the delta, crop losses mounting across the floodplain",
			AgeHours:    140,
			Meta: crisis.Meta{
				Type:           "cyclone",
				Location:       "River delta",
				Severity:       crisis.SeverityMedium,
				Protocol:       "cyclone",
				AffectedPeople: 9000,
				DamageEstimate: "$25M",
				ResponseTime:   "5 hours",
			},
		},
	}
}

// Load embeds each corpus entry's description and upserts it into the
// vector store. Returns the number of documents loaded.
func Load(ctx context.Context, embedder embeddings.Embedder, driver vector.Driver) (int, error) {
	now := time.Now().UTC()

	entries := Entries()
	docs := make([]vector.Document, 0, len(entries))

	for _, entry := range entries {
		embedding, err := embedder.EmbedText(ctx, entry.Description)
		if err != nil {
			return 0, fmt.Errorf("embedding seed entry %q: %w", entry.Meta.Type, err)
		}

		meta := entry.Meta
		meta.Description = entry.Description
		meta.Timestamp = now.Add(-time.Duration(entry.AgeHours * float64(time.Hour)))

		docs = append(docs, vector.Document{
			ID:        uuid.NewString(),
			Embedding: embedding,
			Meta:      meta,
		})
	}

	if err := driver.Upsert(ctx, docs); err != nil {
		return 0, fmt.Errorf("upserting seed corpus: %w", err)
	}

	return len(docs), nil
}
