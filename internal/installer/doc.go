// Package installer runs the DynamicWallpaper installation as one linear
// sequence: provision the install directory, collect and validate the release
// and endpoint URLs, download the client, write the update script, hand the
// tree to the invoking user, test-run the script behind a confirmation gate
// and finally register the boot-time service.
//
// Every step is fatal on failure and nothing is rolled back; the only
// guard against irreversible changes is the confirmation gate.
package installer
