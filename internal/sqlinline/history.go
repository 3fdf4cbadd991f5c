package sqlinline

const QInsertHistory = `--sql 7c99abc9-abb9-4e3f-9c4e-334573646290
insert into synthesis_history(
  id,
  member_id,
  original_photo_path,
  reference_style_id,
  result_photo_path,
  is_synced,
  created_at
) values (
  $1::text,
  nullif($2::text, ''),
  $3::text,
  $4::text,
  nullif($5::text, ''),
  false,
  now()
) returning id, member_id, original_photo_path, reference_style_id, coalesce(result_photo_path, ''), is_synced, created_at;
`

const QListHistory = `--sql 2458a9ed-a498-4a32-b56e-c1702d9960e8
select id, member_id, original_photo_path, reference_style_id, coalesce(result_photo_path, ''), is_synced, created_at
from synthesis_history
where ($1::text = '' or member_id = $1::text)
order by created_at desc, id
offset $2::int
limit $3::int;
`

const QSelectHistoryByID = `--sql 27c7bf10-78ad-4543-a81b-bd54ce76fe2b
select id, member_id, original_photo_path, reference_style_id, coalesce(result_photo_path, ''), is_synced, created_at
from synthesis_history
where id = $1::text
limit 1;
`

const QDeleteHistory = `--sql aeac6652-e287-43e0-b95b-0821cfb524a1
delete from synthesis_history
where id = $1::text;
`
