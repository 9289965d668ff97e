// Package mcp exposes one duel seat as MCP tools, so an agent speaking
// the Model Context Protocol can create rooms, take actions, and read
// the board through the same client a human uses at the terminal.
//
// The tool surface mirrors the game's own vocabulary: create_room,
// join_room, start_game, play_card, pass_turn, game_state, room_info.
// Nothing here enforces rules; rejected actions surface as tool errors
// with the server's message.
package mcp
