// Command marquee recommends movies and TV shows from the terminal and serves
// the same pipeline over HTTP.
//
// Run `marquee config init` to create ~/.config/marquee/config.toml, export
// TMDB_API_KEY, OMDB_API_KEY and OPENAI_API_KEY, then try
// `marquee recommend --genre drama --min-rating 7 --sort rating` or
// `marquee chat`. Output is a table on a terminal and JSON otherwise.
package main
