// Package domain models NASA IMERG daily precipitation granules.
//
// # Data Source
//
// IMERG (Integrated Multi-satellitE Retrievals for GPM) daily files are
// distributed by NASA GES DISC at
// https://gpm1.gesdisc.eosdis.nasa.gov/data/GPM_L3/ as NetCDF-4 granules,
// one per calendar day. Downloads require an Earthdata login; see the
// earthdata package.
//
// # Product Streams
//
// Two release streams exist, differing in latency versus accuracy:
//
//	"E" (early run) — available within hours, less accurate.
//	"L" (late run)  — available after roughly a day, gauge-adjusted.
//
// This service defaults to the late run.
//
// # Versioning
//
// The product version is a small integer embedded twice in the granule URL.
// Version 7 files carry a trailing revision letter ("V07B"); earlier
// versions carry none ("V06"). See [VersionLetter].
//
// # Variables
//
// The precipitation field is named "precipitationCal" (gauge-calibrated) in
// versions that ship both a raw and a calibrated field, and plain
// "precipitation" otherwise. Readers prefer the calibrated name when both
// are present.
//
// # Time Encoding
//
// The granule's time coordinate is a singleton. Across product versions it
// has shipped both as a CF numeric coordinate ("days since <epoch>") and as
// a string timestamp. Consumers must normalize it to the bare calendar date
// in UTC; the time-of-day component is meaningless for a daily accumulation
// and is inconsistent between versions.
//
// # Output Naming
//
// One cloud-optimized GeoTIFF per day is published to blob storage under
//
//	imerg/v<version>/imerg-daily-<run>-<YYYY-MM-DD>.tif
//
// The presence of that blob is the idempotence marker: a date whose blob
// already exists is never reprocessed, and uploads overwrite, so at most one
// artifact exists per date. See [BlobName].
package domain
