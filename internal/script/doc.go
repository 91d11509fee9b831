// Package script renders update_wallpapers.sh, the shell script the boot-time
// service runs. Every collected value is shell-quoted before it reaches the
// template, so no value can change the structure of the generated script.
package script
